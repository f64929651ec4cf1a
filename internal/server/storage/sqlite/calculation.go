package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
)

const calculationColumns = `id, operation, operand_a, operand_b, result, user_id, created_at, updated_at`

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateCalculation inserts a new calculation
func (s *Storage) CreateCalculation(ctx context.Context, calc *models.Calculation) error {
	query := `
		INSERT INTO calculations (operation, operand_a, operand_b, result, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	createdAt := fromUnix(toUnix(s.now()))

	result, err := s.db.ExecContext(ctx, query,
		string(calc.Operation),
		calc.OperandA,
		calc.OperandB,
		calc.Result,
		nullInt64(calc.UserID),
		toUnix(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get calculation id: %w", err)
	}

	calc.ID = id
	calc.CreatedAt = createdAt
	calc.UpdatedAt = nil

	return nil
}

// GetCalculation retrieves a calculation by ID
func (s *Storage) GetCalculation(ctx context.Context, id int64) (*models.Calculation, error) {
	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = ?`
	return scanCalculation(s.db.QueryRowContext(ctx, query, id))
}

// ListCalculations returns a filtered page of calculations and the total count
func (s *Storage) ListCalculations(ctx context.Context, filter storage.CalculationFilter) ([]*models.Calculation, int, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Operation != nil {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(*filter.Operation))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count calculations: %w", err)
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	calculations := make([]*models.Calculation, 0)
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, 0, err
		}
		calculations = append(calculations, calc)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate calculations: %w", err)
	}

	return calculations, total, nil
}

// UpdateCalculation применяет mutate к записи и сохраняет ее в одной транзакции
func (s *Storage) UpdateCalculation(ctx context.Context, id int64, mutate storage.MutateFunc) (*models.Calculation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = ?`
	calc, err := scanCalculation(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(calc); err != nil {
		return nil, err
	}

	updatedAt := fromUnix(toUnix(s.now()))
	calc.ID = id
	calc.UpdatedAt = &updatedAt

	_, err = tx.ExecContext(ctx, `
		UPDATE calculations
		SET operation = ?, operand_a = ?, operand_b = ?, result = ?, updated_at = ?
		WHERE id = ?
	`,
		string(calc.Operation),
		calc.OperandA,
		calc.OperandB,
		calc.Result,
		toUnix(updatedAt),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update calculation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return calc, nil
}

// DeleteCalculation deletes a calculation by ID
func (s *Storage) DeleteCalculation(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCalculationNotFound
	}

	return nil
}

func scanCalculation(row rowScanner) (*models.Calculation, error) {
	calc := &models.Calculation{}
	var (
		operation string
		userID    sql.NullInt64
		createdAt int64
		updatedAt sql.NullInt64
	)

	err := row.Scan(
		&calc.ID,
		&operation,
		&calc.OperandA,
		&calc.OperandB,
		&calc.Result,
		&userID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCalculationNotFound
		}
		return nil, fmt.Errorf("failed to scan calculation: %w", err)
	}

	calc.Operation = models.Operation(operation)
	calc.CreatedAt = fromUnix(createdAt)
	if userID.Valid {
		id := userID.Int64
		calc.UserID = &id
	}
	if updatedAt.Valid {
		t := fromUnix(updatedAt.Int64)
		calc.UpdatedAt = &t
	}

	return calc, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
