package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/http/middleware"
	"github.com/danverse/danverse-api/internal/usecase"
)

const recentLimit = 10

type AdminHandler struct {
	data         adapter.DataAdapter
	updateStatus *usecase.UpdateOrderStatusUseCase
	log          *zap.Logger
}

func NewAdminHandler(data adapter.DataAdapter, updateStatus *usecase.UpdateOrderStatusUseCase, log *zap.Logger) *AdminHandler {
	return &AdminHandler{data: data, updateStatus: updateStatus, log: log}
}

type LeadStatsResponse struct {
	Total  int           `json:"total"`
	Recent []entity.Lead `json:"recent"`
}

func (h *AdminHandler) LeadStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.data.LeadsCount(ctx)
	if err != nil {
		h.log.Error("lead stats failed", zap.Error(err))
		writeError(w, err)
		return
	}

	recent, err := h.data.RecentLeads(ctx, recentLimit)
	if err != nil {
		h.log.Error("lead stats failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LeadStatsResponse{Total: total, Recent: recent})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.data.AllOrders(r.Context())
	if err != nil {
		h.log.Error("order list failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type OrderStatsResponse struct {
	Total    int                        `json:"total"`
	ByStatus map[entity.OrderStatus]int `json:"by_status"`
	Recent   []entity.Order             `json:"recent"`
}

func (h *AdminHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.data.OrdersCount(ctx, entity.OrderFilter{})
	if err != nil {
		h.log.Error("order stats failed", zap.Error(err))
		writeError(w, err)
		return
	}

	byStatus := make(map[entity.OrderStatus]int)
	for _, status := range entity.OrderStatuses() {
		n, err := h.data.OrdersCount(ctx, entity.OrderFilter{Status: status})
		if err != nil {
			h.log.Error("order stats failed", zap.Error(err))
			writeError(w, err)
			return
		}
		byStatus[status] = n
	}

	recent, err := h.data.RecentOrders(ctx, recentLimit)
	if err != nil {
		h.log.Error("order stats failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OrderStatsResponse{Total: total, ByStatus: byStatus, Recent: recent})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateOrderStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}
	input.OrderCode = chi.URLParam(r, "code")

	order, err := h.updateStatus.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	if order.Status == entity.StatusPaid {
		middleware.RecordPayment(order.PaymentMethod)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

// Export streams the snapshot token as a downloadable attachment. The token
// is already encrypted; the content type just keeps browsers from rendering it.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	tok, err := h.data.ExportSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("danverse-backup-%s.dvbak", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(tok))
}

type ImportRequest struct {
	Token string `json:"token"`
}

func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}
	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token is required"})
		return
	}

	if err := h.data.ImportSnapshot(r.Context(), req.Token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
