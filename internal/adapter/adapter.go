// Package adapter presents one stable persistence/mail interface to route
// handlers regardless of mode. The backend is chosen once at process start;
// callers never branch on preview vs production.
package adapter

import (
	"context"
	"errors"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
)

var (
	ErrUnsupportedOperation = errors.New("operation not supported in production mode")
	ErrExpiredBackup        = errors.New("backup has expired")
)

type DataAdapter interface {
	CreateLead(ctx context.Context, lead *entity.Lead) error
	LeadsCount(ctx context.Context) (int, error)
	RecentLeads(ctx context.Context, limit int) ([]entity.Lead, error)
	AllLeads(ctx context.Context) ([]entity.Lead, error)

	CreateOrder(ctx context.Context, order *entity.Order) error
	OrderByCode(ctx context.Context, code string) (*entity.Order, error)
	UpdateOrder(ctx context.Context, code string, patch entity.OrderPatch) (*entity.Order, error)
	OrdersCount(ctx context.Context, filter entity.OrderFilter) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]entity.Order, error)
	AllOrders(ctx context.Context) ([]entity.Order, error)

	SendEmail(ctx context.Context, e mail.Email) (*mail.SendResult, error)

	// Snapshot export/import exists only in preview mode; the production
	// backend returns ErrUnsupportedOperation.
	ExportSnapshot(ctx context.Context) (string, error)
	ImportSnapshot(ctx context.Context, tok string) error

	IsPreviewMode() bool
}
