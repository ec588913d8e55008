package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendlog/internal/core"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err, "failed to create test database")
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func record(owner string, category core.Category, amount string, date core.Date) core.ExpenseRecord {
	d, _ := decimal.NewFromString(amount)
	return core.ExpenseRecord{
		Owner:         owner,
		Category:      category,
		Amount:        d,
		PaymentMethod: core.PaymentCard,
		Date:          date,
		Notes:         "",
	}
}

func (s *RepositoryTestSuite) TestCreateAndList() {
	rec := record("a@x.com", core.CategoryFood, "12.50", core.NewDate(2024, 1, 5))
	rec.Notes = "lunch"

	id, err := s.repo.CreateExpense(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), id, int64(0))

	got, err := s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)

	assert.Equal(s.T(), id, got[0].ID)
	assert.Equal(s.T(), "a@x.com", got[0].Owner)
	assert.Equal(s.T(), core.CategoryFood, got[0].Category)
	assert.True(s.T(), got[0].Amount.Equal(decimal.NewFromFloat(12.50)), "amount = %s", got[0].Amount)
	assert.Equal(s.T(), core.PaymentCard, got[0].PaymentMethod)
	assert.Equal(s.T(), "2024-01-05", got[0].Date.ISO())
	assert.Equal(s.T(), "lunch", got[0].Notes)
	assert.False(s.T(), got[0].CreatedAt.IsZero())
}

func (s *RepositoryTestSuite) TestCreateRejectsNonPositiveAmount() {
	for _, amount := range []string{"0", "-5.00"} {
		_, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, amount, core.NewDate(2024, 1, 5)))
		assert.ErrorIs(s.T(), err, core.ErrInvalidAmount, "amount %s", amount)
	}

	got, err := s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got, "rejected create must leave the store unchanged")
}

func (s *RepositoryTestSuite) TestUpdate() {
	id, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)

	updated := record("a@x.com", core.CategoryTravel, "22.75", core.NewDate(2024, 2, 1))
	updated.ID = id
	updated.PaymentMethod = core.PaymentCash
	updated.Notes = "train ticket"

	ok, err := s.repo.UpdateExpense(s.ctx, updated)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	got, err := s.repo.GetExpense(s.ctx, id, "a@x.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.CategoryTravel, got.Category)
	assert.True(s.T(), got.Amount.Equal(decimal.NewFromFloat(22.75)))
	assert.Equal(s.T(), core.PaymentCash, got.PaymentMethod)
	assert.Equal(s.T(), "2024-02-01", got.Date.ISO())
	assert.Equal(s.T(), "train ticket", got.Notes)
}

func (s *RepositoryTestSuite) TestUpdateRejectsNonPositiveAmount() {
	id, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)

	bad := record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5))
	bad.ID = id
	bad.Amount = decimal.Zero

	ok, err := s.repo.UpdateExpense(s.ctx, bad)
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)
	assert.False(s.T(), ok)

	got, err := s.repo.GetExpense(s.ctx, id, "a@x.com")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Amount.Equal(decimal.NewFromFloat(10.00)), "record must be unchanged")
}

func (s *RepositoryTestSuite) TestUpdateUnknownIDReportsFailure() {
	rec := record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5))
	rec.ID = 9999

	ok, err := s.repo.UpdateExpense(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *RepositoryTestSuite) TestUpdateCannotCrossOwners() {
	id, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)

	// b supplies a's record id: must fail and must not alter the record.
	hijack := record("b@x.com", core.CategoryShopping, "99.99", core.NewDate(2024, 3, 3))
	hijack.ID = id

	ok, err := s.repo.UpdateExpense(s.ctx, hijack)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)

	got, err := s.repo.GetExpense(s.ctx, id, "a@x.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.CategoryFood, got.Category)
	assert.True(s.T(), got.Amount.Equal(decimal.NewFromFloat(10.00)))
}

func (s *RepositoryTestSuite) TestDelete() {
	id, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)

	deleted, err := s.repo.DeleteExpense(s.ctx, id, "a@x.com")
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.repo.GetExpense(s.ctx, id, "a@x.com")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestDeleteUnknownIsSilentNoop() {
	deleted, err := s.repo.DeleteExpense(s.ctx, 9999, "a@x.com")
	assert.NoError(s.T(), err)
	assert.False(s.T(), deleted, "nothing removed means the no-op is reported")
}

func (s *RepositoryTestSuite) TestDeleteCannotCrossOwners() {
	id, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)

	deleted, err := s.repo.DeleteExpense(s.ctx, id, "b@x.com")
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)

	got, err := s.repo.GetExpense(s.ctx, id, "a@x.com")
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), got, "record must survive a cross-owner delete attempt")
}

func (s *RepositoryTestSuite) TestListIsOwnerScoped() {
	_, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5)))
	require.NoError(s.T(), err)
	_, err = s.repo.CreateExpense(s.ctx, record("b@x.com", core.CategoryTravel, "20.00", core.NewDate(2024, 1, 6)))
	require.NoError(s.T(), err)

	for owner, wantCategory := range map[string]core.Category{
		"a@x.com": core.CategoryFood,
		"b@x.com": core.CategoryTravel,
	} {
		got, err := s.repo.ListExpenses(s.ctx, owner, ListFilter{})
		require.NoError(s.T(), err)
		require.Len(s.T(), got, 1, "owner %s", owner)
		assert.Equal(s.T(), wantCategory, got[0].Category)
		assert.Equal(s.T(), owner, got[0].Owner)
	}
}

func (s *RepositoryTestSuite) TestListOrderedByDateDescending() {
	dates := []core.Date{
		core.NewDate(2024, 1, 10),
		core.NewDate(2024, 3, 2),
		core.NewDate(2023, 12, 31),
		core.NewDate(2024, 2, 14),
	}
	for _, d := range dates {
		_, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "1.00", d))
		require.NoError(s.T(), err)
	}

	got, err := s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 4)

	for i := 1; i < len(got); i++ {
		assert.False(s.T(), got[i].Date.After(got[i-1].Date.Time),
			"dates must be non-increasing: %s before %s", got[i-1].Date.ISO(), got[i].Date.ISO())
	}
}

func (s *RepositoryTestSuite) TestListSearchFilter() {
	jan := record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 5))
	jan.Notes = "team LUNCH downtown"
	_, err := s.repo.CreateExpense(s.ctx, jan)
	require.NoError(s.T(), err)

	feb := record("a@x.com", core.CategoryTravel, "20.00", core.NewDate(2024, 2, 1))
	feb.Notes = "airport taxi"
	_, err = s.repo.CreateExpense(s.ctx, feb)
	require.NoError(s.T(), err)

	// Case-insensitive substring across notes.
	got, err := s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{Search: "lunch"})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), core.CategoryFood, got[0].Category)

	// Substring over category names too.
	got, err = s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{Search: "trav"})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), core.CategoryTravel, got[0].Category)

	// No match is an empty result, not an error.
	got, err = s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{Search: "zzz"})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got)
}

func (s *RepositoryTestSuite) TestListDateRange() {
	_, err := s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "10.00", core.NewDate(2024, 1, 1)))
	require.NoError(s.T(), err)
	_, err = s.repo.CreateExpense(s.ctx, record("a@x.com", core.CategoryFood, "20.00", core.NewDate(2024, 2, 1)))
	require.NoError(s.T(), err)

	got, err := s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{From: core.NewDate(2024, 1, 15)})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "2024-02-01", got[0].Date.ISO())

	// Bounds are inclusive on both ends.
	got, err = s.repo.ListExpenses(s.ctx, "a@x.com", ListFilter{
		From: core.NewDate(2024, 1, 1),
		To:   core.NewDate(2024, 2, 1),
	})
	require.NoError(s.T(), err)
	assert.Len(s.T(), got, 2)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
