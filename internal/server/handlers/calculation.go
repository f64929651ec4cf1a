package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/internal/validation"
	"github.com/iudanet/calcbread/pkg/api"
)

// CalculationHandler обрабатывает CRUD запросы истории вычислений
type CalculationHandler struct {
	responder
	calculations *service.CalculationService
}

// NewCalculationHandler creates a new calculation handler
func NewCalculationHandler(logger *slog.Logger, calculations *service.CalculationService) *CalculationHandler {
	return &CalculationHandler{
		responder:    responder{logger: logger},
		calculations: calculations,
	}
}

// List обрабатывает GET /api/calculations?skip=&limit=&operation=
// Аутентифицированный пользователь видит только свои записи, анонимный - все
func (h *CalculationHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseBrowseQuery(r)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	caller, _ := identity.UserFromContext(r.Context())

	items, total, err := h.calculations.Browse(r.Context(), caller, q)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	resp := api.CalculationListResponse{
		Items: make([]api.CalculationResponse, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toCalculationResponse(item))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/calculations
func (h *CalculationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCalculationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	owner, _ := identity.UserFromContext(r.Context())

	calc, err := h.calculations.Create(r.Context(), owner, service.CreateInput{
		Operation: models.Operation(req.Operation),
		OperandA:  req.OperandA,
		OperandB:  req.OperandB,
	})
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, toCalculationResponse(calc), http.StatusCreated)
}

// Get обрабатывает GET /api/calculations/{id}
func (h *CalculationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	calc, err := h.calculations.Get(r.Context(), id)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, toCalculationResponse(calc), http.StatusOK)
}

// Update обрабатывает PUT /api/calculations/{id}
// Частичное обновление; деление на ноль и переполнение возвращают 400
func (h *CalculationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	var req api.UpdateCalculationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	in := service.UpdateInput{
		OperandA: req.OperandA,
		OperandB: req.OperandB,
	}
	if req.Operation != nil {
		op := models.Operation(*req.Operation)
		in.Operation = &op
	}

	calc, err := h.calculations.Update(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDivisionByZero):
			h.sendError(w, "Cannot divide by zero", http.StatusBadRequest)
			return
		case errors.Is(err, models.ErrResultOutOfRange):
			h.sendError(w, "Result is out of range", http.StatusBadRequest)
			return
		}
		h.sendServiceError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, toCalculationResponse(calc), http.StatusOK)
}

// Delete обрабатывает DELETE /api/calculations/{id}
func (h *CalculationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	if err := h.calculations.Delete(r.Context(), id); err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &validation.FieldError{Field: "id", Message: "id must be an integer", Err: err}
	}
	return id, nil
}

func parseBrowseQuery(r *http.Request) (service.BrowseQuery, error) {
	query := r.URL.Query()
	q := service.BrowseQuery{Limit: validation.DefaultLimit}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return q, &validation.FieldError{Field: "skip", Message: "skip must be an integer", Err: err}
		}
		q.Skip = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, &validation.FieldError{Field: "limit", Message: "limit must be an integer", Err: err}
		}
		q.Limit = limit
	}

	if raw := query.Get("operation"); raw != "" {
		op := models.Operation(raw)
		q.Operation = &op
	}

	return q, nil
}
