// Package service implements the calculator and account operations on top of storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
	"github.com/iudanet/calcbread/internal/validation"
)

// CreateInput данные нового вычисления. Операнды nil, если поле не передано.
type CreateInput struct {
	OperandA  *float64
	OperandB  *float64
	Operation models.Operation
}

// UpdateInput частичное обновление: nil поля сохраняют текущее значение
type UpdateInput struct {
	Operation *models.Operation
	OperandA  *float64
	OperandB  *float64
}

// BrowseQuery параметры выборки истории
type BrowseQuery struct {
	Operation *models.Operation
	Skip      int
	Limit     int
}

// CalculationService управляет историей вычислений
type CalculationService struct {
	logger  *slog.Logger
	storage storage.CalculationStorage
}

// NewCalculationService creates a new calculation service
func NewCalculationService(logger *slog.Logger, calcStorage storage.CalculationStorage) *CalculationService {
	return &CalculationService{
		logger:  logger,
		storage: calcStorage,
	}
}

// Create валидирует вход, вычисляет результат и сохраняет запись.
// owner == nil создает анонимное вычисление.
func (s *CalculationService) Create(ctx context.Context, owner *models.User, in CreateInput) (*models.Calculation, error) {
	if err := validation.ValidateOperation(in.Operation); err != nil {
		return nil, err
	}
	if in.OperandA == nil {
		return nil, validation.Required("operand_a")
	}
	if in.OperandB == nil {
		return nil, validation.Required("operand_b")
	}
	if err := validation.ValidateCalculation(in.Operation, *in.OperandA, *in.OperandB); err != nil {
		return nil, err
	}

	calc := &models.Calculation{
		Operation: in.Operation,
		OperandA:  *in.OperandA,
		OperandB:  *in.OperandB,
	}
	if owner != nil {
		ownerID := owner.ID
		calc.UserID = &ownerID
	}

	if err := calc.Recompute(); err != nil {
		return nil, err
	}

	if err := s.storage.CreateCalculation(ctx, calc); err != nil {
		return nil, fmt.Errorf("failed to save calculation: %w", err)
	}

	s.logger.DebugContext(ctx, "Calculation created",
		slog.Int64("id", calc.ID),
		slog.String("operation", string(calc.Operation)),
		slog.Bool("anonymous", calc.IsAnonymous()),
	)

	return calc, nil
}

// Browse возвращает страницу истории и общее число записей до пагинации.
// Для аутентифицированного caller выборка ограничена его записями,
// для анонимного возвращаются все записи.
func (s *CalculationService) Browse(ctx context.Context, caller *models.User, q BrowseQuery) ([]*models.Calculation, int, error) {
	if err := validation.ValidatePage(q.Skip, q.Limit); err != nil {
		return nil, 0, err
	}
	if q.Operation != nil {
		if err := validation.ValidateOperation(*q.Operation); err != nil {
			return nil, 0, err
		}
	}

	filter := storage.CalculationFilter{
		Operation: q.Operation,
		Offset:    q.Skip,
		Limit:     q.Limit,
	}
	if caller != nil {
		callerID := caller.ID
		filter.UserID = &callerID
	}

	items, total, err := s.storage.ListCalculations(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list calculations: %w", err)
	}

	return items, total, nil
}

// Get returns a calculation by id. Ownership is not checked.
func (s *CalculationService) Get(ctx context.Context, id int64) (*models.Calculation, error) {
	calc, err := s.storage.GetCalculation(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return calc, nil
}

// Update применяет частичные изменения, пересчитывает результат и сохраняет запись
// в одной транзакции. При ошибке валидации запись не меняется.
func (s *CalculationService) Update(ctx context.Context, id int64, in UpdateInput) (*models.Calculation, error) {
	if in.Operation != nil {
		if err := validation.ValidateOperation(*in.Operation); err != nil {
			return nil, err
		}
	}

	calc, err := s.storage.UpdateCalculation(ctx, id, func(c *models.Calculation) error {
		if in.Operation != nil {
			c.Operation = *in.Operation
		}
		if in.OperandA != nil {
			c.OperandA = *in.OperandA
		}
		if in.OperandB != nil {
			c.OperandB = *in.OperandB
		}

		if err := validation.ValidateCalculation(c.Operation, c.OperandA, c.OperandB); err != nil {
			return err
		}
		return c.Recompute()
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	s.logger.DebugContext(ctx, "Calculation updated", slog.Int64("id", id))

	return calc, nil
}

// Delete removes a calculation by id. Ownership is not checked.
func (s *CalculationService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCalculation(ctx, id); err != nil {
		return mapNotFound(err)
	}

	s.logger.DebugContext(ctx, "Calculation deleted", slog.Int64("id", id))
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrCalculationNotFound) {
		return ErrNotFound
	}
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		return err
	}
	return fmt.Errorf("calculation storage: %w", err)
}
