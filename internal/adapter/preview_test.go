package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
	"github.com/danverse/danverse-api/internal/infra/store"
	"github.com/danverse/danverse-api/internal/infra/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, e mail.Email) (*mail.SendResult, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.SendResult), args.Error(1)
}

func newPreview(t *testing.T) *PreviewAdapter {
	t.Helper()
	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)
	return NewPreviewAdapter(store.New(), codec, &MockMailer{}, zap.NewNop())
}

func mustLead(t *testing.T, email string) *entity.Lead {
	t.Helper()
	lead, err := entity.NewLead(entity.LeadFields{Email: email})
	require.NoError(t, err)
	return lead
}

func mustOrder(t *testing.T, planID string) *entity.Order {
	t.Helper()
	plan, err := entity.PlanByID(planID)
	require.NoError(t, err)
	order, err := entity.NewOrder(plan, entity.OrderFields{
		CustomerName:  "Nour",
		CustomerEmail: "nour@example.com",
		CustomerPhone: "+201069415658",
	})
	require.NoError(t, err)
	return order
}

func TestPreviewAdapter_ExportImportCycle(t *testing.T) {
	p := newPreview(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, p.CreateLead(ctx, mustLead(t, email)))
	}
	require.NoError(t, p.CreateOrder(ctx, mustOrder(t, "starter")))
	require.NoError(t, p.CreateOrder(ctx, mustOrder(t, "professional")))

	tok, err := p.ExportSnapshot(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	p.store.Clear()
	count, _ := p.LeadsCount(ctx)
	require.Zero(t, count)

	require.NoError(t, p.ImportSnapshot(ctx, tok))

	leads, _ := p.LeadsCount(ctx)
	orders, _ := p.OrdersCount(ctx, entity.OrderFilter{})
	assert.Equal(t, 3, leads)
	assert.Equal(t, 2, orders)
}

func TestPreviewAdapter_ImportIsDestructive(t *testing.T) {
	p := newPreview(t)
	ctx := context.Background()

	leadC := mustLead(t, "c@example.com")
	donor := newPreview(t)
	require.NoError(t, donor.CreateLead(ctx, leadC))
	tok, err := donor.ExportSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, p.CreateLead(ctx, mustLead(t, "a@example.com")))
	require.NoError(t, p.CreateLead(ctx, mustLead(t, "b@example.com")))

	require.NoError(t, p.ImportSnapshot(ctx, tok))

	all, err := p.AllLeads(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, leadC.ID, all[0].ID)
}

func TestPreviewAdapter_ImportRejectsGarbage(t *testing.T) {
	p := newPreview(t)
	err := p.ImportSnapshot(context.Background(), "not-a-backup")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestPreviewAdapter_ImportRejectsExpiredBackup(t *testing.T) {
	p := newPreview(t)
	ctx := context.Background()
	require.NoError(t, p.CreateLead(ctx, mustLead(t, "a@example.com")))

	tok, err := p.ExportSnapshot(ctx)
	require.NoError(t, err)

	p.codec.WithClock(func() time.Time { return time.Now().Add(BackupTTL + time.Hour) })

	err = p.ImportSnapshot(ctx, tok)
	assert.ErrorIs(t, err, ErrExpiredBackup)
}

func TestPreviewAdapter_OrderPriceInvariant(t *testing.T) {
	for planID, want := range map[string]int{"starter": 2999, "professional": 7999, "enterprise": 19999} {
		order := mustOrder(t, planID)
		assert.Equal(t, want, order.Amount)
		assert.Equal(t, "EGP", order.Currency)
	}
}

func TestProductionAdapter_SnapshotUnsupported(t *testing.T) {
	a := NewProductionAdapter(nil, nil, nil, zap.NewNop())

	_, err := a.ExportSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	err = a.ImportSnapshot(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	assert.False(t, a.IsPreviewMode())
}
