package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
)

// stepClock возвращает время, сдвигающееся на секунду при каждом вызове
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newCalc(op models.Operation, a, b float64, owner *int64) *models.Calculation {
	calc := &models.Calculation{Operation: op, OperandA: a, OperandB: b, UserID: owner}
	_ = calc.Recompute()
	return calc
}

func TestCalculationStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "calc@example.com", "calc")

	tests := []struct {
		calc *models.Calculation
		name string
	}{
		{name: "owned calculation", calc: newCalc(models.OperationMultiply, 6, 7, &user.ID)},
		{name: "anonymous calculation", calc: newCalc(models.OperationAdd, 10, 5, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.CreateCalculation(ctx, tt.calc))
			assert.NotZero(t, tt.calc.ID)
			assert.Nil(t, tt.calc.UpdatedAt)

			got, err := s.GetCalculation(ctx, tt.calc.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.calc, got)
		})
	}
}

func TestCalculationStorage_GetCalculation_NotFound(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetCalculation(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrCalculationNotFound)
}

func TestCalculationStorage_CreateCalculation_UnknownOwner(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	missing := int64(777)
	err := s.CreateCalculation(context.Background(), newCalc(models.OperationAdd, 1, 1, &missing))
	assert.Error(t, err, "foreign key must reject unknown user")
}

func TestCalculationStorage_ListCalculations(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	s.now = stepClock(time.Unix(1_700_000_000, 0))

	alice := createTestUser(t, ctx, s, "alice@example.com", "alice")
	bob := createTestUser(t, ctx, s, "bob@example.com", "bob")

	fixtures := []*models.Calculation{
		newCalc(models.OperationAdd, 1, 1, &alice.ID),
		newCalc(models.OperationMultiply, 2, 3, &alice.ID),
		newCalc(models.OperationAdd, 5, 5, &bob.ID),
		newCalc(models.OperationDivide, 9, 3, nil),
		newCalc(models.OperationAdd, 7, 1, nil),
	}
	for _, calc := range fixtures {
		require.NoError(t, s.CreateCalculation(ctx, calc))
	}

	add := models.OperationAdd

	tests := []struct {
		name      string
		filter    storage.CalculationFilter
		wantIDs   []int64
		wantTotal int
	}{
		{
			name:      "all newest first",
			filter:    storage.CalculationFilter{Limit: 100},
			wantIDs:   []int64{fixtures[4].ID, fixtures[3].ID, fixtures[2].ID, fixtures[1].ID, fixtures[0].ID},
			wantTotal: 5,
		},
		{
			name:      "scoped to alice",
			filter:    storage.CalculationFilter{UserID: &alice.ID, Limit: 100},
			wantIDs:   []int64{fixtures[1].ID, fixtures[0].ID},
			wantTotal: 2,
		},
		{
			name:      "operation filter",
			filter:    storage.CalculationFilter{Operation: &add, Limit: 100},
			wantIDs:   []int64{fixtures[4].ID, fixtures[2].ID, fixtures[0].ID},
			wantTotal: 3,
		},
		{
			name:      "owner and operation",
			filter:    storage.CalculationFilter{UserID: &bob.ID, Operation: &add, Limit: 100},
			wantIDs:   []int64{fixtures[2].ID},
			wantTotal: 1,
		},
		{
			name:      "pagination keeps total",
			filter:    storage.CalculationFilter{Offset: 1, Limit: 2},
			wantIDs:   []int64{fixtures[3].ID, fixtures[2].ID},
			wantTotal: 5,
		},
		{
			name:      "offset past end",
			filter:    storage.CalculationFilter{Offset: 10, Limit: 2},
			wantIDs:   []int64{},
			wantTotal: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.ListCalculations(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			ids := make([]int64, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCalculationStorage_UpdateCalculation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	calc := newCalc(models.OperationAdd, 1, 1, nil)
	require.NoError(t, s.CreateCalculation(ctx, calc))

	updated, err := s.UpdateCalculation(ctx, calc.ID, func(c *models.Calculation) error {
		c.Operation = models.OperationSubtract
		c.OperandA = 10
		c.OperandB = 3
		return c.Recompute()
	})
	require.NoError(t, err)
	assert.Equal(t, calc.ID, updated.ID)
	assert.Equal(t, 7.0, updated.Result)
	require.NotNil(t, updated.UpdatedAt)

	stored, err := s.GetCalculation(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestCalculationStorage_UpdateCalculation_MutateErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	calc := newCalc(models.OperationAdd, 1, 1, nil)
	require.NoError(t, s.CreateCalculation(ctx, calc))

	errReject := errors.New("reject")
	_, err := s.UpdateCalculation(ctx, calc.ID, func(c *models.Calculation) error {
		c.OperandA = 100
		return errReject
	})
	assert.ErrorIs(t, err, errReject)

	stored, err := s.GetCalculation(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stored.OperandA)
	assert.Equal(t, 2.0, stored.Result)
	assert.Nil(t, stored.UpdatedAt)
}

func TestCalculationStorage_UpdateCalculation_NotFound(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	called := false
	_, err := s.UpdateCalculation(context.Background(), 404, func(c *models.Calculation) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, storage.ErrCalculationNotFound)
	assert.False(t, called)
}

func TestCalculationStorage_DeleteCalculation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	calc := newCalc(models.OperationAdd, 1, 1, nil)
	require.NoError(t, s.CreateCalculation(ctx, calc))

	require.NoError(t, s.DeleteCalculation(ctx, calc.ID))

	_, err := s.GetCalculation(ctx, calc.ID)
	assert.ErrorIs(t, err, storage.ErrCalculationNotFound)

	err = s.DeleteCalculation(ctx, calc.ID)
	assert.ErrorIs(t, err, storage.ErrCalculationNotFound)
}
