package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/mail"
)

type CreateLeadInput struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Message     string `json:"message,omitempty"`
	BudgetRange string `json:"budget_range,omitempty"`
	Service     string `json:"service,omitempty"`
	Source      string `json:"source,omitempty"`

	// Honeypot catches bots; handlers drop the submission silently when set.
	Honeypot string `json:"honeypot,omitempty"`
}

type CreateLeadUseCase struct {
	Data       adapter.DataAdapter
	AdminEmail string
	Log        *zap.Logger
}

func NewCreateLeadUseCase(data adapter.DataAdapter, adminEmail string, log *zap.Logger) *CreateLeadUseCase {
	return &CreateLeadUseCase{Data: data, AdminEmail: adminEmail, Log: log}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if validationErrors := ValidateCreateLeadInput(input); len(validationErrors) > 0 {
		return nil, validationFailed(validationErrors)
	}

	lead, err := entity.NewLead(entity.LeadFields{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Company:     input.Company,
		Message:     input.Message,
		BudgetRange: input.BudgetRange,
		Service:     input.Service,
		Source:      input.Source,
	})
	if err != nil {
		return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}

	if err := uc.Data.CreateLead(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to persist lead: " + err.Error()}
	}

	// Notification is secondary: the lead is already persisted, and a mail
	// outage must never surface to the visitor.
	go uc.notifyAdmin(context.WithoutCancel(ctx), lead)

	return lead, nil
}

func (uc *CreateLeadUseCase) notifyAdmin(ctx context.Context, lead *entity.Lead) {
	if uc.AdminEmail == "" {
		return
	}

	subject := fmt.Sprintf("New lead: %s", lead.Email)
	body := fmt.Sprintf(
		"New lead captured.\n\nName: %s\nEmail: %s\nPhone: %s\nCompany: %s\nService: %s\nBudget: %s\nSource: %s\n\n%s\n",
		lead.Name, lead.Email, lead.Phone, lead.Company, lead.Service, lead.BudgetRange, lead.Source, lead.Message,
	)

	if _, err := uc.Data.SendEmail(ctx, mail.Email{To: uc.AdminEmail, Subject: subject, Text: body}); err != nil {
		uc.Log.Error("lead notification email failed",
			zap.String("to", uc.AdminEmail),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
