package api

import "time"

// CreateCalculationRequest запрос на новое вычисление.
// Операнды указателями, чтобы отличить отсутствующее поле от нуля.
type CreateCalculationRequest struct {
	OperandA  *float64 `json:"operand_a"`
	OperandB  *float64 `json:"operand_b"`
	Operation string   `json:"operation"` // add | subtract | multiply | divide
}

// UpdateCalculationRequest частичное обновление: nil поля не меняются
type UpdateCalculationRequest struct {
	Operation *string  `json:"operation,omitempty"`
	OperandA  *float64 `json:"operand_a,omitempty"`
	OperandB  *float64 `json:"operand_b,omitempty"`
}

// CalculationResponse сохраненное вычисление
type CalculationResponse struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	UserID    *int64     `json:"user_id"`
	Operation string     `json:"operation"`
	ID        int64      `json:"id"`
	OperandA  float64    `json:"operand_a"`
	OperandB  float64    `json:"operand_b"`
	Result    float64    `json:"result"`
}

// CalculationListResponse страница истории и общее число записей до пагинации
type CalculationListResponse struct {
	Items []CalculationResponse `json:"items"`
	Total int                   `json:"total"`
}
