package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/errs"
)

func TestProductConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := &product.Product{Name: "Tee", Price: decimal.NewFromInt(10), Stock: 0}
	require.NoError(t, repo.Create(ctx, p))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustStock(ctx, p.ID, 1, product.OpIncrement)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Stock)
}

func TestProductUpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := &product.Product{Name: "Tee", Stock: 7, Sizes: []string{"M"}}
	require.NoError(t, repo.Create(ctx, p))

	edit := *p
	edit.Name = "Tee v2"
	edit.Stock = 999
	require.NoError(t, repo.Update(ctx, &edit))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tee v2", got.Name)
	assert.Equal(t, int64(7), got.Stock)
}

func TestProductNotFound(t *testing.T) {
	repo := NewProductRepository()
	_, err := repo.AdjustStock(context.Background(), 42, 1, product.OpSet)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(context.Background(), 42), errs.ErrNotFound))
}

func TestOrderMutateFailureLeavesRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := &order.Order{OrderNumber: "A-1", Status: order.StatusPlaced, PaymentStatus: order.PaymentPending}
	require.NoError(t, repo.Create(ctx, o))

	boom := errors.New("boom")
	_, err := repo.Mutate(ctx, o.ID, func(o *order.Order) error {
		o.Status = order.StatusShipped
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, got.Status)
}

func TestOrderDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.Create(ctx, &order.Order{OrderNumber: "A-1"}))
	err := repo.Create(ctx, &order.Order{OrderNumber: "A-1"})
	assert.True(t, errors.Is(err, errs.ErrConflict))
}

func TestMessageListFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Create(ctx, &message.Message{
			Name:      fmt.Sprintf("user%d", i),
			Email:     fmt.Sprintf("u%d@example.com", i),
			Subject:   "Need a REFUND",
			Body:      "hello",
			Status:    message.StatusNew,
			Priority:  message.PriorityMedium,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &message.Message{
		Name: "other", Email: "o@example.com", Subject: "shipping", Body: "where is it",
		Status: message.StatusNew, Priority: message.PriorityLow, CreatedAt: base,
	}))

	page1, total, err := repo.List(ctx, message.Filter{Status: message.StatusNew, Search: "refund", Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, page1, 5)
	assert.Equal(t, "user6", page1[0].Name)

	page2, _, err := repo.List(ctx, message.Filter{Status: message.StatusNew, Search: "refund", Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	page3, _, err := repo.List(ctx, message.Filter{Search: "refund", Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, page3)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), counts[message.StatusNew])
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()

	ok, res, err := s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, res)

	ok, res, err = s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, res, "in-flight claim has no result yet")

	require.NoError(t, s.Complete(ctx, "k", []byte(`{"stock":3}`), time.Minute))
	ok, res, err = s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.JSONEq(t, `{"stock":3}`, string(res))

	require.NoError(t, s.Release(ctx, "k"))
	ok, _, err = s.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyPendingClaimExpires(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ok, _, err := s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// 占用方未 Complete 就退出，标记到期后可以重新占用
	now = now.Add(31 * time.Second)
	ok, _, err = s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// Complete 后按结果 ttl 保留
	require.NoError(t, s.Complete(ctx, "k", []byte(`{}`), time.Hour))
	now = now.Add(time.Minute)
	ok, res, err := s.Claim(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, res)
}
