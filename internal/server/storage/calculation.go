package storage

import (
	"context"

	"github.com/iudanet/calcbread/internal/models"
)

// CalculationFilter задает выборку вычислений для ListCalculations
type CalculationFilter struct {
	UserID    *int64            // nil - без ограничения по владельцу
	Operation *models.Operation // nil - все операции
	Offset    int
	Limit     int
}

// MutateFunc изменяет загруженную запись внутри транзакции.
// Ошибка из MutateFunc откатывает транзакцию без изменений.
type MutateFunc func(calc *models.Calculation) error

// CalculationStorage defines interface for calculation persistence
type CalculationStorage interface {
	// CreateCalculation inserts a calculation and fills calc.ID and calc.CreatedAt
	CreateCalculation(ctx context.Context, calc *models.Calculation) error

	// GetCalculation retrieves a calculation by ID
	// Returns ErrCalculationNotFound if it doesn't exist
	GetCalculation(ctx context.Context, id int64) (*models.Calculation, error)

	// ListCalculations returns a page of calculations ordered by creation time (newest first)
	// and the total number of rows matching the filter before pagination
	ListCalculations(ctx context.Context, filter CalculationFilter) ([]*models.Calculation, int, error)

	// UpdateCalculation loads the calculation, applies mutate and stores the result atomically.
	// UpdatedAt is set by the storage. Returns ErrCalculationNotFound if it doesn't exist
	UpdateCalculation(ctx context.Context, id int64, mutate MutateFunc) (*models.Calculation, error)

	// DeleteCalculation deletes a calculation by ID
	// Returns ErrCalculationNotFound if it doesn't exist
	DeleteCalculation(ctx context.Context, id int64) error
}

// Storage объединяет все хранилища сервера
type Storage interface {
	UserStorage
	CalculationStorage

	// Ping проверяет доступность базы данных
	Ping(ctx context.Context) error

	// Close closes the underlying connection pool
	Close() error
}
