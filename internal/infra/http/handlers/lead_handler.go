package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/infra/http/middleware"
	"github.com/danverse/danverse-api/internal/usecase"
)

type LeadHandler struct {
	createLead  *usecase.CreateLeadUseCase
	rateLimiter *RateLimiter
	log         *zap.Logger
}

func NewLeadHandler(createLead *usecase.CreateLeadUseCase, log *zap.Logger) *LeadHandler {
	return &LeadHandler{
		createLead:  createLead,
		rateLimiter: NewRateLimiter(5, 15*time.Minute),
		log:         log,
	}
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{Success: false, Message: "Invalid JSON"})
		return
	}

	// Bots fill the honeypot; pretend success and store nothing.
	if input.Honeypot != "" {
		writeJSON(w, http.StatusOK, CaptureLeadResponse{Success: true})
		return
	}

	lead, err := h.createLead.Execute(r.Context(), input)
	if err != nil {
		h.log.Warn("lead capture rejected", zap.Error(err))
		writeError(w, err)
		return
	}

	middleware.RecordLeadCaptured(lead.Source)
	writeJSON(w, http.StatusCreated, CaptureLeadResponse{Success: true, ID: lead.ID})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
