package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/errs"
)

func TestCreateOrderDefaults(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	o := f.order(t, order.PaymentCOD)

	assert.NotZero(t, o.ID)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, o.OrderNumber)
	assert.Equal(t, order.StatusPlaced, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.True(t, decimal.NewFromInt(40).Equal(o.Amount))
	assert.True(t, decimal.NewFromInt(50).Equal(o.Total()))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	_, err := f.orderSvc.Create(context.Background(), &order.Order{
		Customer: order.Customer{Name: "Ann", Email: "ann@example.com"},
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = f.orderSvc.Create(context.Background(), &order.Order{
		Customer: order.Customer{Name: "Ann", Email: "ann@example.com"},
		Items:    []order.Item{{Name: "Tee", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestTransitionBetweenNonTerminalStates(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	o := f.order(t, order.PaymentStripe)
	ctx := context.Background()

	for _, st := range []order.Status{order.StatusShipped, order.StatusProcessing, order.StatusPlaced} {
		got, err := f.orderSvc.Transition(ctx, o.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}
}

func TestCancelFromAnyNonTerminalThenLocked(t *testing.T) {
	for _, from := range []order.Status{order.StatusPlaced, order.StatusProcessing, order.StatusShipped} {
		t.Run(string(from), func(t *testing.T) {
			f := newFixture(t, config.PolicyConfig{})
			o := f.order(t, order.PaymentCOD)
			ctx := context.Background()

			_, err := f.orderSvc.Transition(ctx, o.ID, from)
			require.NoError(t, err)
			got, err := f.orderSvc.Transition(ctx, o.ID, order.StatusCancelled)
			require.NoError(t, err)
			assert.Equal(t, order.StatusCancelled, got.Status)

			for _, next := range order.Statuses {
				_, err := f.orderSvc.Transition(ctx, o.ID, next)
				assert.ErrorIs(t, err, errs.ErrTerminalStateViolation)
			}
		})
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	o := f.order(t, order.PaymentCOD)

	_, err := f.orderSvc.Transition(context.Background(), o.ID, "Lost")
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = f.orderSvc.Transition(context.Background(), 999, order.StatusShipped)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	got, err := f.orderSvc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, got.Status)
	assert.Equal(t, int64(1), f.monitor.RejectedTransitions)
}

func TestPaymentTerminalLock(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	o := f.order(t, order.PaymentCOD)
	ctx := context.Background()

	got, err := f.orderSvc.SetPaymentStatus(ctx, o.ID, order.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, order.StatusPlaced, got.Status, "coupling is off by default")

	_, err = f.orderSvc.SetPaymentStatus(ctx, o.ID, order.PaymentFailed)
	assert.ErrorIs(t, err, errs.ErrTerminalStateViolation)

	got, err = f.orderSvc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, got.PaymentStatus)
}

func TestPaymentRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{})
	o := f.order(t, order.PaymentCOD)
	_, err := f.orderSvc.SetPaymentStatus(context.Background(), o.ID, "refunded")
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestCODCompletionAdvancesOrder(t *testing.T) {
	f := newFixture(t, config.PolicyConfig{CODCompletionAdvancesOrder: true})
	ctx := context.Background()

	cod := f.order(t, order.PaymentCOD)
	got, err := f.orderSvc.SetPaymentStatus(ctx, cod.ID, order.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)

	online := f.order(t, order.PaymentRazorpay)
	got, err = f.orderSvc.SetPaymentStatus(ctx, online.ID, order.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, got.Status)

	cancelled := f.order(t, order.PaymentCOD)
	_, err = f.orderSvc.Transition(ctx, cancelled.ID, order.StatusCancelled)
	require.NoError(t, err)
	got, err = f.orderSvc.SetPaymentStatus(ctx, cancelled.ID, order.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status, "terminal order status never moves")
}
