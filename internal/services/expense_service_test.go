package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/storage"
)

type fakeStore struct {
	createID  int64
	createErr error
	updateOK  bool
	deleteOK  bool
	deleteErr error
	records   []core.ExpenseRecord
}

func (f *fakeStore) CreateExpense(ctx context.Context, rec core.ExpenseRecord) (int64, error) {
	return f.createID, f.createErr
}

func (f *fakeStore) UpdateExpense(ctx context.Context, rec core.ExpenseRecord) (bool, error) {
	return f.updateOK, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id int64, owner string) (bool, error) {
	return f.deleteOK, f.deleteErr
}

func (f *fakeStore) GetExpense(ctx context.Context, id int64, owner string) (*core.ExpenseRecord, error) {
	if len(f.records) == 0 {
		return nil, storage.ErrNotFound
	}
	return &f.records[0], nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, owner string, filter storage.ListFilter) ([]core.ExpenseRecord, error) {
	return f.records, nil
}

type fakePublisher struct {
	published []*amqp.ExpenseEventMessage
	err       error
	closed    bool
}

func (f *fakePublisher) PublishExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func validRecord() core.ExpenseRecord {
	return core.ExpenseRecord{
		Owner:         "a@x.com",
		Category:      core.CategoryFood,
		Amount:        decimal.NewFromFloat(12.50),
		PaymentMethod: core.PaymentCard,
		Date:          core.NewDate(2024, 1, 5),
	}
}

func TestExpenseService_CreatePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{createID: 7}, pub)

	id, err := svc.Create(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	require.Len(t, pub.published, 1)
	assert.Equal(t, int64(7), pub.published[0].ID)
	assert.Equal(t, "a@x.com", pub.published[0].Owner)
	assert.Equal(t, amqp.EventCreated, pub.published[0].Kind)
}

func TestExpenseService_CreateStoreErrorSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{createErr: core.ErrInvalidAmount}, pub)

	_, err := svc.Create(context.Background(), validRecord())
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, pub.published)
}

func TestExpenseService_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(&fakeStore{createID: 7}, pub)

	id, err := svc.Create(context.Background(), validRecord())
	require.NoError(t, err, "publish failure must not fail the mutation")
	assert.Equal(t, int64(7), id)
}

func TestExpenseService_NilPublisher(t *testing.T) {
	svc := NewExpenseService(&fakeStore{createID: 3}, nil)

	id, err := svc.Create(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	assert.NoError(t, svc.Close())
}

func TestExpenseService_UpdateOnlyPublishesOnSuccess(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{updateOK: false}, pub)

	rec := validRecord()
	rec.ID = 9
	ok, err := svc.Update(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pub.published, "a failed update must not announce anything")

	svc = NewExpenseService(&fakeStore{updateOK: true}, pub)
	ok, err = svc.Update(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, pub.published, 1)
	assert.Equal(t, amqp.EventUpdated, pub.published[0].Kind)
}

func TestExpenseService_DeletePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{deleteOK: true}, pub)

	require.NoError(t, svc.Delete(context.Background(), 4, "a@x.com"))
	require.Len(t, pub.published, 1)
	assert.Equal(t, amqp.EventDeleted, pub.published[0].Kind)
}

func TestExpenseService_NoOpDeletePublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{deleteOK: false}, pub)

	require.NoError(t, svc.Delete(context.Background(), 9999, "a@x.com"),
		"deleting a missing record succeeds silently")
	assert.Empty(t, pub.published, "nothing was removed, so nothing is announced")
}

func TestExpenseService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{}, pub)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}
