package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/cookiesync"
	"github.com/danverse/danverse-api/internal/infra/mail"
	"github.com/danverse/danverse-api/internal/infra/store"
	"github.com/danverse/danverse-api/internal/infra/token"
)

// PreviewAdapter backs the secretless deployment mode: an in-memory store
// persisted through encrypted cookies, with sandbox mail.
type PreviewAdapter struct {
	store  *store.Store
	codec  *token.Codec
	mailer mail.Sender
	log    *zap.Logger
	now    func() time.Time
}

func NewPreviewAdapter(st *store.Store, codec *token.Codec, mailer mail.Sender, log *zap.Logger) *PreviewAdapter {
	return &PreviewAdapter{
		store:  st,
		codec:  codec,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// persist re-syncs cookies when the request carries a cookie session. Outside
// a request (tests, tooling) the in-memory write alone stands.
func (p *PreviewAdapter) persist(ctx context.Context) {
	if sess, ok := cookiesync.FromContext(ctx); ok {
		sess.Save()
	}
}

func (p *PreviewAdapter) CreateLead(ctx context.Context, lead *entity.Lead) error {
	if err := p.store.InsertLead(*lead); err != nil {
		return err
	}
	p.persist(ctx)
	return nil
}

func (p *PreviewAdapter) LeadsCount(ctx context.Context) (int, error) {
	return p.store.LeadsCount(), nil
}

func (p *PreviewAdapter) RecentLeads(ctx context.Context, limit int) ([]entity.Lead, error) {
	return p.store.RecentLeads(limit), nil
}

func (p *PreviewAdapter) AllLeads(ctx context.Context) ([]entity.Lead, error) {
	return p.store.AllLeads(), nil
}

func (p *PreviewAdapter) CreateOrder(ctx context.Context, order *entity.Order) error {
	if err := p.store.InsertOrder(*order); err != nil {
		return err
	}
	p.persist(ctx)
	return nil
}

func (p *PreviewAdapter) OrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	order, err := p.store.Order(code)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (p *PreviewAdapter) UpdateOrder(ctx context.Context, code string, patch entity.OrderPatch) (*entity.Order, error) {
	order, err := p.store.UpdateOrder(code, patch, p.now().UTC())
	if err != nil {
		return nil, err
	}
	p.persist(ctx)
	return &order, nil
}

func (p *PreviewAdapter) OrdersCount(ctx context.Context, filter entity.OrderFilter) (int, error) {
	return p.store.OrdersCount(filter), nil
}

func (p *PreviewAdapter) RecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	return p.store.RecentOrders(limit), nil
}

func (p *PreviewAdapter) AllOrders(ctx context.Context) ([]entity.Order, error) {
	return p.store.AllOrders(), nil
}

func (p *PreviewAdapter) SendEmail(ctx context.Context, e mail.Email) (*mail.SendResult, error) {
	return p.mailer.Send(ctx, e)
}

func (p *PreviewAdapter) ExportSnapshot(ctx context.Context) (string, error) {
	snap := Snapshot{
		Leads:      p.store.LeadMap(),
		Orders:     p.store.OrderMap(),
		ExportedAt: p.now().UTC(),
	}

	tok, err := p.codec.Encode(snap, BackupTTL)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return tok, nil
}

// ImportSnapshot atomically replaces the whole store with the snapshot
// contents. Existing records are discarded, not merged.
func (p *PreviewAdapter) ImportSnapshot(ctx context.Context, tok string) error {
	var snap Snapshot
	if err := p.codec.Decode(tok, &snap); err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return fmt.Errorf("%w: exported more than %s ago", ErrExpiredBackup, BackupTTL)
		}
		return err
	}

	p.store.ReplaceAll(snap.Leads, snap.Orders)
	p.persist(ctx)

	p.log.Info("snapshot imported",
		zap.Int("leads", len(snap.Leads)),
		zap.Int("orders", len(snap.Orders)),
		zap.Time("exported_at", snap.ExportedAt),
	)
	return nil
}

func (p *PreviewAdapter) IsPreviewMode() bool { return true }
