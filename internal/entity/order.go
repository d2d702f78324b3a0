package entity

import (
	"crypto/rand"
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusAwaitingProof OrderStatus = "awaiting_proof"
	StatusPending       OrderStatus = "pending"
	StatusPaid          OrderStatus = "paid"
	StatusCancelled     OrderStatus = "cancelled"
	StatusRefunded      OrderStatus = "refunded"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions is the allowed status graph. cancelled and refunded are
// terminal; paid may only move on to refunded.
var transitions = map[OrderStatus][]OrderStatus{
	StatusAwaitingProof: {StatusPending, StatusPaid, StatusCancelled},
	StatusPending:       {StatusPaid, StatusCancelled, StatusRefunded},
	StatusPaid:          {StatusRefunded},
	StatusCancelled:     {},
	StatusRefunded:      {},
}

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusAwaitingProof, StatusPending, StatusPaid, StatusCancelled, StatusRefunded}
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	OrderCode            string      `json:"order_code"`
	Plan                 string      `json:"plan"`
	CustomerName         string      `json:"customer_name"`
	CustomerEmail        string      `json:"customer_email"`
	CustomerPhone        string      `json:"customer_phone"`
	CustomerCompany      string      `json:"customer_company,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	Amount               int         `json:"amount"`
	Currency             string      `json:"currency"`
	Status               OrderStatus `json:"status"`
	PaymentMethod        string      `json:"payment_method,omitempty"`
	TransactionReference string      `json:"transaction_reference,omitempty"`
	PaymentInstructions  string      `json:"payment_instructions,omitempty"`
	PaidAt               *time.Time  `json:"paid_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

type OrderFields struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerCompany string
	Notes           string
}

// NewOrder builds an order for the given plan. Amount and currency always come
// from the price table, never from the caller.
func NewOrder(plan *Plan, f OrderFields) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		OrderCode:       NewOrderCode(),
		Plan:            plan.ID,
		CustomerName:    f.CustomerName,
		CustomerEmail:   strings.TrimSpace(f.CustomerEmail),
		CustomerPhone:   f.CustomerPhone,
		CustomerCompany: f.CustomerCompany,
		Notes:           f.Notes,
		Amount:          plan.Amount,
		Currency:        plan.Currency,
		Status:          StatusAwaitingProof,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

var phoneDigits = regexp.MustCompile(`\D`)

func (o *Order) Validate() error {
	if o.CustomerName == "" {
		return errors.New("name is required")
	}
	if o.CustomerEmail == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(o.CustomerEmail); err != nil {
		return errors.New("email is invalid")
	}
	if len(phoneDigits.ReplaceAllString(o.CustomerPhone, "")) < 10 {
		return errors.New("phone is required and must have at least 10 digits")
	}
	return nil
}

// OrderPatch is a partial update; nil fields are left untouched.
type OrderPatch struct {
	Status               *OrderStatus
	PaymentMethod        *string
	TransactionReference *string
	PaidAt               *time.Time
}

// Apply mutates the order in place and bumps UpdatedAt.
func (o *Order) Apply(p OrderPatch, now time.Time) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.TransactionReference != nil {
		o.TransactionReference = *p.TransactionReference
	}
	if p.PaidAt != nil {
		o.PaidAt = p.PaidAt
	}
	o.UpdatedAt = now
}

// OrderFilter matches orders on field equality; zero values match everything.
type OrderFilter struct {
	Status OrderStatus
	Plan   string
}

func (f OrderFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Plan != "" && o.Plan != f.Plan {
		return false
	}
	return true
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderCode returns a human-readable code like DV-MF3K2A1B-X7Q9PZ, unique
// per millisecond plus six random characters.
func NewOrderCode() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	buf := make([]byte, 6)
	_, _ = rand.Read(buf) // never fails as of go 1.24
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}

	return strings.ToUpper("DV-" + ts + "-" + string(buf))
}
