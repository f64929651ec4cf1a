package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Operation тип арифметической операции
type Operation string

// Допустимые операции калькулятора
const (
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
	OperationMultiply Operation = "multiply"
	OperationDivide   Operation = "divide"
)

var (
	// ErrDivisionByZero возвращается при делении на ноль
	ErrDivisionByZero = errors.New("cannot divide by zero")

	// ErrUnknownOperation возвращается для операции вне перечисления
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrResultOutOfRange результат не представим конечным float64 (переполнение)
	ErrResultOutOfRange = errors.New("result is out of range")
)

// Operations возвращает все допустимые операции в фиксированном порядке
func Operations() []Operation {
	return []Operation{OperationAdd, OperationSubtract, OperationMultiply, OperationDivide}
}

// Valid reports whether op is one of the four supported operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationAdd, OperationSubtract, OperationMultiply, OperationDivide:
		return true
	}
	return false
}

// ParseOperation converts a raw string into an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
	return op, nil
}

// Perform вычисляет результат операции над двумя операндами.
// Деление на ноль и нечисловой результат (Inf, NaN) возвращают ошибку.
func Perform(op Operation, a, b float64) (float64, error) {
	var result float64
	switch op {
	case OperationAdd:
		result = a + b
	case OperationSubtract:
		result = a - b
	case OperationMultiply:
		result = a * b
	case OperationDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		result = a / b
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %s %g %g", ErrResultOutOfRange, op, a, b)
	}
	return result, nil
}

// Calculation представляет сохраненное вычисление
type Calculation struct {
	CreatedAt time.Time  `json:"created_at"` // время создания
	UpdatedAt *time.Time `json:"updated_at"` // nil до первого редактирования
	UserID    *int64     `json:"user_id"`    // nil для анонимных вычислений
	Operation Operation  `json:"operation"`  // тип операции
	ID        int64      `json:"id"`
	OperandA  float64    `json:"operand_a"`
	OperandB  float64    `json:"operand_b"`
	Result    float64    `json:"result"` // всегда равен Perform(Operation, OperandA, OperandB)
}

// Recompute пересчитывает Result по текущим операндам
func (c *Calculation) Recompute() error {
	result, err := Perform(c.Operation, c.OperandA, c.OperandB)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}

// IsAnonymous reports whether the calculation has no owner.
func (c *Calculation) IsAnonymous() bool {
	return c.UserID == nil
}
