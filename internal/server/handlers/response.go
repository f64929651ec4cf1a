package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/internal/validation"
	"github.com/iudanet/calcbread/pkg/api"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// responder общие методы ответа для всех handlers
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ. Тело кодируется до записи статуса,
// чтобы ошибка кодирования стала 500, а не обрезанным 2xx.
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(api.ErrorResponse{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "internal server error",
		})
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// sendServiceError переводит ошибку сервисного слоя в HTTP ответ
func (h responder) sendServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		fieldErr *validation.FieldError
		conflict *service.ConflictError
	)

	switch {
	case errors.As(err, &fieldErr):
		h.sendJSON(w, api.ErrorResponse{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: fieldErr.Message,
			Field:   fieldErr.Field,
		}, http.StatusUnprocessableEntity)
	case errors.As(err, &conflict):
		h.logger.WarnContext(ctx, "conflict", slog.String("field", conflict.Field))
		h.sendError(w, conflict.Message, http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		h.sendError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		h.sendError(w, "Calculation not found", http.StatusNotFound)
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON читает тело запроса. При ошибке отвечает 400 и возвращает false
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func toCalculationResponse(c *models.Calculation) api.CalculationResponse {
	return api.CalculationResponse{
		ID:        c.ID,
		Operation: string(c.Operation),
		OperandA:  c.OperandA,
		OperandB:  c.OperandB,
		Result:    c.Result,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
