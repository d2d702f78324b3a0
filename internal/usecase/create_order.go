package usecase

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/config"
	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
)

const defaultPaymentMethod = "instapay"

type CreateOrderInput struct {
	Plan    string `json:"plan"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Method  string `json:"method,omitempty"`
}

type CreateOrderOutput struct {
	Order               *entity.Order `json:"order"`
	PaymentInstructions string        `json:"payment_instructions"`
	WhatsAppDeeplink    string        `json:"whatsapp_deeplink"`
}

type CreateOrderUseCase struct {
	Data       adapter.DataAdapter
	Payment    config.Payment
	AdminEmail string
	Log        *zap.Logger
}

func NewCreateOrderUseCase(data adapter.DataAdapter, payment config.Payment, adminEmail string, log *zap.Logger) *CreateOrderUseCase {
	return &CreateOrderUseCase{Data: data, Payment: payment, AdminEmail: adminEmail, Log: log}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if validationErrors := ValidateCreateOrderInput(input); len(validationErrors) > 0 {
		return nil, validationFailed(validationErrors)
	}

	plan, err := entity.PlanByID(input.Plan)
	if err != nil {
		return nil, err
	}

	order, err := entity.NewOrder(plan, entity.OrderFields{
		CustomerName:    input.Name,
		CustomerEmail:   input.Email,
		CustomerPhone:   input.Phone,
		CustomerCompany: input.Company,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, &DomainError{Code: "INVALID_ORDER", Message: err.Error()}
	}

	method := input.Method
	if method == "" {
		method = defaultPaymentMethod
	}
	order.PaymentMethod = method
	order.PaymentInstructions = uc.buildPaymentInstructions(method, order.Amount, order.Currency, order.OrderCode)

	if err := uc.Data.CreateOrder(ctx, order); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to persist order: " + err.Error()}
	}

	go uc.sendNotifications(context.WithoutCancel(ctx), order, plan)

	whatsappText := url.QueryEscape(fmt.Sprintf(
		"Order %s – I sent %d %s via %s.", order.OrderCode, order.Amount, order.Currency, method,
	))

	return &CreateOrderOutput{
		Order:               order,
		PaymentInstructions: order.PaymentInstructions,
		WhatsAppDeeplink:    "https://wa.me/?text=" + whatsappText,
	}, nil
}

func (uc *CreateOrderUseCase) buildPaymentInstructions(method string, amount int, currency, code string) string {
	switch method {
	case "vodafone":
		return fmt.Sprintf("Send %d %s to %s via Vodafone Cash. Include %s in the message, then submit your reference.",
			amount, currency, uc.Payment.VodafoneCashNumber, code)
	case "bank":
		return fmt.Sprintf("Transfer %d %s to %s, account name %s, account no. %s. Use %s as the transfer reference.",
			amount, currency, uc.Payment.BankName, uc.Payment.BankAccountName, uc.Payment.BankAccountNumber, code)
	default:
		return fmt.Sprintf("Send %d %s to %s via Instapay. Add %s as the note, then submit your reference.",
			amount, currency, uc.Payment.InstaAlias, code)
	}
}

func (uc *CreateOrderUseCase) sendNotifications(ctx context.Context, order *entity.Order, plan *entity.Plan) {
	confirmation := mail.Email{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Your DANVERSE order %s", order.OrderCode),
		Text: fmt.Sprintf(
			"Hi %s,\n\nThanks for ordering the %s package (%d %s).\n\n%s\n\nYour order code is %s — keep it for your payment proof.\n\n— DANVERSE\n",
			order.CustomerName, plan.Name, order.Amount, order.Currency, order.PaymentInstructions, order.OrderCode,
		),
	}
	if _, err := uc.Data.SendEmail(ctx, confirmation); err != nil {
		uc.Log.Error("order confirmation email failed",
			zap.String("to", confirmation.To),
			zap.String("subject", confirmation.Subject),
			zap.Error(err),
		)
	}

	if uc.AdminEmail == "" {
		return
	}
	notification := mail.Email{
		To:      uc.AdminEmail,
		Subject: fmt.Sprintf("New order %s (%s)", order.OrderCode, order.Plan),
		Text: fmt.Sprintf(
			"New order awaiting payment proof.\n\nCode: %s\nPlan: %s\nAmount: %d %s\nCustomer: %s <%s> %s\nMethod: %s\n",
			order.OrderCode, order.Plan, order.Amount, order.Currency,
			order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.PaymentMethod,
		),
	}
	if _, err := uc.Data.SendEmail(ctx, notification); err != nil {
		uc.Log.Error("order admin notification failed",
			zap.String("to", notification.To),
			zap.String("subject", notification.Subject),
			zap.Error(err),
		)
	}
}
