package validation

import "fmt"

// FieldError описывает ошибку валидации конкретного поля входных данных
type FieldError struct {
	Err     error  // исходная причина, может быть nil
	Field   string // имя поля в JSON запросе
	Message string // сообщение для клиента
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required возвращает ошибку для отсутствующего обязательного поля
func Required(field string) *FieldError {
	return fieldError(field, "field required")
}
