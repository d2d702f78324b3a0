package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
)

type LeadRepository interface {
	Insert(ctx context.Context, lead *entity.Lead) error
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]entity.Lead, error)
	All(ctx context.Context) ([]entity.Lead, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, order *entity.Order) error
	FindByCode(ctx context.Context, code string) (*entity.Order, error)
	Update(ctx context.Context, code string, patch entity.OrderPatch) (*entity.Order, error)
	Count(ctx context.Context, filter entity.OrderFilter) (int, error)
	Recent(ctx context.Context, limit int) ([]entity.Order, error)
	All(ctx context.Context) ([]entity.Order, error)
}

// ProductionAdapter talks to the managed datastore and real mail transport.
// Transient I/O errors are propagated, never retried here.
type ProductionAdapter struct {
	leads  LeadRepository
	orders OrderRepository
	mailer mail.Sender
	log    *zap.Logger
}

func NewProductionAdapter(leads LeadRepository, orders OrderRepository, mailer mail.Sender, log *zap.Logger) *ProductionAdapter {
	return &ProductionAdapter{leads: leads, orders: orders, mailer: mailer, log: log}
}

func (a *ProductionAdapter) CreateLead(ctx context.Context, lead *entity.Lead) error {
	return a.leads.Insert(ctx, lead)
}

func (a *ProductionAdapter) LeadsCount(ctx context.Context) (int, error) {
	return a.leads.Count(ctx)
}

func (a *ProductionAdapter) RecentLeads(ctx context.Context, limit int) ([]entity.Lead, error) {
	return a.leads.Recent(ctx, limit)
}

func (a *ProductionAdapter) AllLeads(ctx context.Context) ([]entity.Lead, error) {
	return a.leads.All(ctx)
}

func (a *ProductionAdapter) CreateOrder(ctx context.Context, order *entity.Order) error {
	return a.orders.Insert(ctx, order)
}

func (a *ProductionAdapter) OrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	return a.orders.FindByCode(ctx, code)
}

func (a *ProductionAdapter) UpdateOrder(ctx context.Context, code string, patch entity.OrderPatch) (*entity.Order, error) {
	return a.orders.Update(ctx, code, patch)
}

func (a *ProductionAdapter) OrdersCount(ctx context.Context, filter entity.OrderFilter) (int, error) {
	return a.orders.Count(ctx, filter)
}

func (a *ProductionAdapter) RecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	return a.orders.Recent(ctx, limit)
}

func (a *ProductionAdapter) AllOrders(ctx context.Context) ([]entity.Order, error) {
	return a.orders.All(ctx)
}

func (a *ProductionAdapter) SendEmail(ctx context.Context, e mail.Email) (*mail.SendResult, error) {
	return a.mailer.Send(ctx, e)
}

func (a *ProductionAdapter) ExportSnapshot(ctx context.Context) (string, error) {
	return "", ErrUnsupportedOperation
}

func (a *ProductionAdapter) ImportSnapshot(ctx context.Context, tok string) error {
	return ErrUnsupportedOperation
}

func (a *ProductionAdapter) IsPreviewMode() bool { return false }
