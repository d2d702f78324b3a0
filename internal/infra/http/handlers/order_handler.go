package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/http/middleware"
	"github.com/danverse/danverse-api/internal/usecase"
)

type OrderHandler struct {
	createOrder *usecase.CreateOrderUseCase
	rateLimiter *RateLimiter
	log         *zap.Logger
}

func NewOrderHandler(createOrder *usecase.CreateOrderUseCase, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		createOrder: createOrder,
		rateLimiter: NewRateLimiter(5, 15*time.Minute),
		log:         log,
	}
}

type CheckoutResponse struct {
	Success   bool          `json:"success"`
	OrderCode string        `json:"orderCode"`
	Order     *orderSummary `json:"order"`
}

type orderSummary struct {
	OrderCode           string             `json:"order_code"`
	Plan                string             `json:"plan"`
	Amount              int                `json:"amount"`
	Currency            string             `json:"currency"`
	Status              entity.OrderStatus `json:"status"`
	PaymentMethod       string             `json:"payment_method"`
	PaymentInstructions string             `json:"payment_instructions"`
	WhatsAppDeeplink    string             `json:"whatsapp_deeplink"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please try again later."})
		return
	}

	var input usecase.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}

	output, err := h.createOrder.Execute(r.Context(), input)
	if err != nil {
		h.log.Warn("checkout rejected", zap.Error(err))
		writeError(w, err)
		return
	}

	order := output.Order
	middleware.RecordOrderCreated(order.Plan)

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Success:   true,
		OrderCode: order.OrderCode,
		Order: &orderSummary{
			OrderCode:           order.OrderCode,
			Plan:                order.Plan,
			Amount:              order.Amount,
			Currency:            order.Currency,
			Status:              order.Status,
			PaymentMethod:       order.PaymentMethod,
			PaymentInstructions: output.PaymentInstructions,
			WhatsAppDeeplink:    output.WhatsAppDeeplink,
		},
	})
}
