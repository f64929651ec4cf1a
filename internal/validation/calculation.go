package validation

import (
	"errors"

	"github.com/iudanet/calcbread/internal/models"
)

const (
	// DefaultLimit размер страницы по умолчанию
	DefaultLimit = 100
	// MaxLimit верхняя граница размера страницы
	MaxLimit = 1000
)

// ValidateOperation проверяет, что операция входит в перечисление
func ValidateOperation(op models.Operation) error {
	if !op.Valid() {
		return &FieldError{
			Field:   "operation",
			Message: "operation must be one of: add, subtract, multiply, divide",
			Err:     models.ErrUnknownOperation,
		}
	}
	return nil
}

// ValidateCalculation проверяет вход вычисления до обращения к хранилищу:
// деление на ноль и результат, не представимый конечным числом.
func ValidateCalculation(op models.Operation, operandA, operandB float64) error {
	if err := ValidateOperation(op); err != nil {
		return err
	}
	if op == models.OperationDivide && operandB == 0 {
		return &FieldError{
			Field:   "operand_b",
			Message: "Cannot divide by zero",
			Err:     models.ErrDivisionByZero,
		}
	}
	if _, err := models.Perform(op, operandA, operandB); errors.Is(err, models.ErrResultOutOfRange) {
		return &FieldError{
			Field:   "result",
			Message: "Result is out of range",
			Err:     err,
		}
	}
	return nil
}

// ValidatePage проверяет параметры пагинации: skip >= 0, 1 <= limit <= MaxLimit
func ValidatePage(skip, limit int) error {
	if skip < 0 {
		return fieldError("skip", "skip must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxLimit {
		return fieldError("limit", "limit must be between 1 and %d", MaxLimit)
	}
	return nil
}
