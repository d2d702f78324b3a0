// Package cookiesync round-trips the in-memory preview store through
// encrypted cookies so data survives serverless cold starts within a browser
// session. Durability is at-least-effort: a failed save is logged, never
// rolled back.
package cookiesync

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/store"
	"github.com/danverse/danverse-api/internal/infra/token"
)

const (
	LeadsCookie  = "preview_leads"
	OrdersCookie = "preview_orders"

	// CookieTTL must outlive realistic session gaps without being unbounded.
	CookieTTL = 14 * 24 * time.Hour

	// MaxCookieRecords caps how many records per kind are serialized into a
	// cookie. The in-memory store itself is never truncated.
	MaxCookieRecords = 200

	// Browsers commonly drop cookies above ~4 KiB.
	maxCookieBytes = 4096
)

type Bridge struct {
	store  *store.Store
	codec  *token.Codec
	secure bool
	log    *zap.Logger
}

func NewBridge(st *store.Store, codec *token.Codec, secure bool, log *zap.Logger) *Bridge {
	return &Bridge{store: st, codec: codec, secure: secure, log: log}
}

// Load rehydrates the store from the request's cookies. A missing, corrupt or
// expired cookie is not an error; that kind simply starts empty. Warm
// in-memory entries always win over cookie contents.
func (b *Bridge) Load(r *http.Request) {
	if c, err := r.Cookie(LeadsCookie); err == nil {
		var leads map[string]entity.Lead
		if err := b.codec.Decode(c.Value, &leads); err != nil {
			b.log.Debug("discarding leads cookie", zap.Error(err))
		} else {
			b.store.HydrateLeads(leads)
		}
	}

	if c, err := r.Cookie(OrdersCookie); err == nil {
		var orders map[string]entity.Order
		if err := b.codec.Decode(c.Value, &orders); err != nil {
			b.log.Debug("discarding orders cookie", zap.Error(err))
		} else {
			b.store.HydrateOrders(orders)
		}
	}
}

// Save serializes both collections into their cookies. Must run before the
// response body is written; callers invoke it right after each mutation.
func (b *Bridge) Save(w http.ResponseWriter) {
	b.setCookie(w, LeadsCookie, trimLeads(b.store.LeadMap()))
	b.setCookie(w, OrdersCookie, trimOrders(b.store.OrderMap()))
}

func (b *Bridge) setCookie(w http.ResponseWriter, name string, payload any) {
	value, err := b.codec.Encode(payload, CookieTTL)
	if err != nil {
		b.log.Warn("preview cookie save failed, data will not survive a restart",
			zap.String("cookie", name), zap.Error(err))
		return
	}
	if len(value) > maxCookieBytes {
		b.log.Warn("preview cookie exceeds 4KiB and may be dropped by the browser",
			zap.String("cookie", name), zap.Int("bytes", len(value)))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// trimLeads keeps only the most recent records so the cookie has a bounded
// size even when the in-memory collection keeps growing.
func trimLeads(leads map[string]entity.Lead) map[string]entity.Lead {
	if len(leads) <= MaxCookieRecords {
		return leads
	}
	all := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := make(map[string]entity.Lead, MaxCookieRecords)
	for _, l := range all[:MaxCookieRecords] {
		out[l.ID] = l
	}
	return out
}

func trimOrders(orders map[string]entity.Order) map[string]entity.Order {
	if len(orders) <= MaxCookieRecords {
		return orders
	}
	all := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := make(map[string]entity.Order, MaxCookieRecords)
	for _, o := range all[:MaxCookieRecords] {
		out[o.OrderCode] = o
	}
	return out
}

// Session ties a bridge to one request/response pair so the preview adapter
// can persist after mutations without knowing about HTTP.
type Session struct {
	bridge *Bridge
	w      http.ResponseWriter
}

// Begin loads cookie state into the store and returns a session bound to the
// response writer.
func (b *Bridge) Begin(w http.ResponseWriter, r *http.Request) *Session {
	b.Load(r)
	return &Session{bridge: b, w: w}
}

func (s *Session) Save() {
	s.bridge.Save(s.w)
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// Middleware begins a session per request and stashes it in the context.
// Installed only in preview mode.
func Middleware(b *Bridge) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := b.Begin(w, r)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
		})
	}
}
