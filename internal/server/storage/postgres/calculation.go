package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
)

const calculationColumns = `id, operation, operand_a, operand_b, result, user_id, created_at, updated_at`

// CreateCalculation inserts a new calculation
func (s *Storage) CreateCalculation(ctx context.Context, calc *models.Calculation) error {
	createdAt := s.timestamp()

	err := s.pool.QueryRow(ctx, `
		INSERT INTO calculations (operation, operand_a, operand_b, result, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		string(calc.Operation),
		calc.OperandA,
		calc.OperandB,
		calc.Result,
		calc.UserID,
		createdAt,
	).Scan(&calc.ID)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}

	calc.CreatedAt = createdAt
	calc.UpdatedAt = nil
	return nil
}

// GetCalculation retrieves a calculation by ID
func (s *Storage) GetCalculation(ctx context.Context, id int64) (*models.Calculation, error) {
	return scanCalculation(s.pool.QueryRow(ctx,
		`SELECT `+calculationColumns+` FROM calculations WHERE id = $1`, id))
}

// ListCalculations returns a filtered page newest first and the total before paging
func (s *Storage) ListCalculations(ctx context.Context, filter storage.CalculationFilter) ([]*models.Calculation, int, error) {
	var (
		conditions []string
		args       []any
	)

	placeholder := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = "+placeholder(*filter.UserID))
	}
	if filter.Operation != nil {
		conditions = append(conditions, "operation = "+placeholder(string(*filter.Operation)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM calculations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count calculations: %w", err)
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ` + placeholder(filter.Limit) +
		` OFFSET ` + placeholder(filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
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

// UpdateCalculation блокирует строку через SELECT ... FOR UPDATE, применяет mutate и сохраняет
func (s *Storage) UpdateCalculation(ctx context.Context, id int64, mutate storage.MutateFunc) (*models.Calculation, error) {
	var updated *models.Calculation

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}, func(tx pgx.Tx) error {
		calc, err := scanCalculation(tx.QueryRow(ctx,
			`SELECT `+calculationColumns+` FROM calculations WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if err := mutate(calc); err != nil {
			return err
		}

		updatedAt := s.timestamp()
		calc.ID = id
		calc.UpdatedAt = &updatedAt

		_, err = tx.Exec(ctx, `
			UPDATE calculations
			SET operation = $1, operand_a = $2, operand_b = $3, result = $4, updated_at = $5
			WHERE id = $6
		`,
			string(calc.Operation),
			calc.OperandA,
			calc.OperandB,
			calc.Result,
			updatedAt,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update calculation: %w", err)
		}

		updated = calc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteCalculation deletes a calculation by ID
func (s *Storage) DeleteCalculation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCalculationNotFound
	}
	return nil
}

func scanCalculation(row pgx.Row) (*models.Calculation, error) {
	calc := &models.Calculation{}
	var (
		operation string
		updatedAt *time.Time
	)

	err := row.Scan(
		&calc.ID,
		&operation,
		&calc.OperandA,
		&calc.OperandB,
		&calc.Result,
		&calc.UserID,
		&calc.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrCalculationNotFound
		}
		return nil, fmt.Errorf("failed to scan calculation: %w", err)
	}

	calc.Operation = models.Operation(operation)
	calc.CreatedAt = calc.CreatedAt.UTC()
	if updatedAt != nil {
		t := updatedAt.UTC()
		calc.UpdatedAt = &t
	}

	return calc, nil
}
