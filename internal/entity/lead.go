package entity

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// DefaultLeadSource is recorded when a submission carries no source of its own.
const DefaultLeadSource = "website"

type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Message     string    `json:"message,omitempty"`
	BudgetRange string    `json:"budget_range,omitempty"`
	Service     string    `json:"service,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeadFields struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Message     string
	BudgetRange string
	Service     string
	Source      string
}

// NewLead builds a lead with a fresh identity and creation timestamp.
func NewLead(f LeadFields) (*Lead, error) {
	lead := &Lead{
		ID:          NewLeadID(),
		Name:        f.Name,
		Email:       strings.TrimSpace(f.Email),
		Phone:       f.Phone,
		Company:     f.Company,
		Message:     f.Message,
		BudgetRange: f.BudgetRange,
		Service:     f.Service,
		Source:      f.Source,
		CreatedAt:   time.Now().UTC(),
	}
	if lead.Source == "" {
		lead.Source = DefaultLeadSource
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(l.Email); err != nil {
		return errors.New("email is invalid")
	}
	return nil
}

// NewLeadID returns a time-ordered unique lead identity.
func NewLeadID() string {
	return "lead_" + ulid.Make().String()
}
