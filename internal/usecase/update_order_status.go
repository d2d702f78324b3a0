package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/entity"
)

type UpdateOrderStatusInput struct {
	OrderCode            string             `json:"order_code"`
	Status               entity.OrderStatus `json:"status"`
	PaymentMethod        string             `json:"payment_method,omitempty"`
	TransactionReference string             `json:"transaction_reference,omitempty"`
}

type UpdateOrderStatusUseCase struct {
	Data adapter.DataAdapter
	Log  *zap.Logger
}

func NewUpdateOrderStatusUseCase(data adapter.DataAdapter, log *zap.Logger) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{Data: data, Log: log}
}

// Execute moves an order through the status graph. Transitions outside the
// graph are rejected; moving into paid stamps paid_at and records the payment
// method and transaction reference when supplied.
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, input UpdateOrderStatusInput) (*entity.Order, error) {
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidStatus, input.Status)
	}

	current, err := uc.Data.OrderByCode(ctx, input.OrderCode)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(input.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, current.Status, input.Status)
	}

	patch := entity.OrderPatch{Status: &input.Status}
	if input.Status == entity.StatusPaid {
		now := time.Now().UTC()
		patch.PaidAt = &now
		if input.PaymentMethod != "" {
			patch.PaymentMethod = &input.PaymentMethod
		}
		if input.TransactionReference != "" {
			patch.TransactionReference = &input.TransactionReference
		}
	}

	updated, err := uc.Data.UpdateOrder(ctx, input.OrderCode, patch)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("order status updated",
		zap.String("order_code", updated.OrderCode),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return updated, nil
}
