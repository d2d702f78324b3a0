package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/config"
	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
	"github.com/danverse/danverse-api/internal/infra/store"
	"github.com/danverse/danverse-api/internal/infra/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// MockMailer records sends so the fire-and-forget notification path can be
// observed without a real transport.
type MockMailer struct {
	mock.Mock
	mu    sync.Mutex
	sends []mail.Email
}

func (m *MockMailer) Send(ctx context.Context, e mail.Email) (*mail.SendResult, error) {
	m.mu.Lock()
	m.sends = append(m.sends, e)
	m.mu.Unlock()
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.SendResult), args.Error(1)
}

func newTestAdapter(t *testing.T, mailer mail.Sender) adapter.DataAdapter {
	t.Helper()
	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)
	return adapter.NewPreviewAdapter(store.New(), codec, mailer, zap.NewNop())
}

func newMockMailer() *MockMailer {
	m := &MockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(&mail.SendResult{MessageID: "<test@danverse.ai>"}, nil)
	return m
}

func TestCreateLead_HappyPath(t *testing.T) {
	data := newTestAdapter(t, newMockMailer())
	uc := NewCreateLeadUseCase(data, "hello@danverse.ai", zap.NewNop())
	ctx := context.Background()

	before, err := data.LeadsCount(ctx)
	require.NoError(t, err)

	lead, err := uc.Execute(ctx, CreateLeadInput{Email: "a@b.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "a@b.com", lead.Email)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.Equal(t, entity.DefaultLeadSource, lead.Source)

	after, err := data.LeadsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestCreateLead_EmailRequired(t *testing.T) {
	uc := NewCreateLeadUseCase(newTestAdapter(t, newMockMailer()), "", zap.NewNop())

	_, err := uc.Execute(context.Background(), CreateLeadInput{Name: "no email"})
	require.Error(t, err)
	assert.True(t, IsDomainError(err))

	_, err = uc.Execute(context.Background(), CreateLeadInput{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, IsDomainError(err))
}

func TestCreateLead_MailFailureDoesNotBlockPersistence(t *testing.T) {
	mailer := &MockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	data := newTestAdapter(t, mailer)
	uc := NewCreateLeadUseCase(data, "hello@danverse.ai", zap.NewNop())

	lead, err := uc.Execute(context.Background(), CreateLeadInput{Email: "a@b.com"})
	require.NoError(t, err)
	require.NotNil(t, lead)

	count, err := data.LeadsCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func validOrderInput(plan string) CreateOrderInput {
	return CreateOrderInput{
		Plan:  plan,
		Name:  "Omar Farouk",
		Email: "omar@example.com",
		Phone: "+201069415658",
	}
}

func TestCreateOrder_PriceComesFromPlanTable(t *testing.T) {
	uc := NewCreateOrderUseCase(newTestAdapter(t, newMockMailer()), config.Payment{InstaAlias: "agency@instapay"}, "", zap.NewNop())

	for plan, want := range map[string]int{"starter": 2999, "professional": 7999, "enterprise": 19999} {
		out, err := uc.Execute(context.Background(), validOrderInput(plan))
		require.NoError(t, err)
		assert.Equal(t, want, out.Order.Amount)
		assert.Equal(t, "EGP", out.Order.Currency)
		assert.Equal(t, entity.StatusAwaitingProof, out.Order.Status)
		assert.Contains(t, out.PaymentInstructions, out.Order.OrderCode)
	}
}

func TestCreateOrder_UnknownPlan(t *testing.T) {
	uc := NewCreateOrderUseCase(newTestAdapter(t, newMockMailer()), config.Payment{}, "", zap.NewNop())

	_, err := uc.Execute(context.Background(), validOrderInput("platinum"))
	assert.ErrorIs(t, err, entity.ErrPlanNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	data := newTestAdapter(t, newMockMailer())
	createUC := NewCreateOrderUseCase(data, config.Payment{}, "", zap.NewNop())
	updateUC := NewUpdateOrderStatusUseCase(data, zap.NewNop())
	ctx := context.Background()

	out, err := createUC.Execute(ctx, validOrderInput("starter"))
	require.NoError(t, err)
	code := out.Order.OrderCode
	require.Equal(t, entity.StatusAwaitingProof, out.Order.Status)

	// Give the update a distinct wall-clock instant.
	time.Sleep(5 * time.Millisecond)

	paid, err := updateUC.Execute(ctx, UpdateOrderStatusInput{
		OrderCode:            code,
		Status:               entity.StatusPaid,
		PaymentMethod:        "instapay",
		TransactionReference: "REF123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, paid.Status)
	assert.Equal(t, "instapay", paid.PaymentMethod)
	assert.Equal(t, "REF123", paid.TransactionReference)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.UpdatedAt.After(paid.CreatedAt))

	refunded, err := updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: code, Status: entity.StatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRefunded, refunded.Status)
}

func TestUpdateOrderStatus_Failures(t *testing.T) {
	data := newTestAdapter(t, newMockMailer())
	createUC := NewCreateOrderUseCase(data, config.Payment{}, "", zap.NewNop())
	updateUC := NewUpdateOrderStatusUseCase(data, zap.NewNop())
	ctx := context.Background()

	out, err := createUC.Execute(ctx, validOrderInput("starter"))
	require.NoError(t, err)
	code := out.Order.OrderCode

	_, err = updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: "DV-NOPE", Status: entity.StatusPaid})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: code, Status: "shipped"})
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)

	// awaiting_proof cannot jump straight to refunded.
	_, err = updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: code, Status: entity.StatusRefunded})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	// Terminal states accept nothing further.
	_, err = updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: code, Status: entity.StatusCancelled})
	require.NoError(t, err)
	_, err = updateUC.Execute(ctx, UpdateOrderStatusInput{OrderCode: code, Status: entity.StatusPaid})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestCreateOrder_UniqueCodes(t *testing.T) {
	data := newTestAdapter(t, newMockMailer())
	uc := NewCreateOrderUseCase(data, config.Payment{}, "", zap.NewNop())
	ctx := context.Background()

	codes := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		out, err := uc.Execute(ctx, validOrderInput("starter"))
		require.NoError(t, err)
		codes[out.Order.OrderCode] = struct{}{}
	}
	assert.Len(t, codes, 100)
}
