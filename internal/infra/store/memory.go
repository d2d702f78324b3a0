// Package store holds the authoritative preview-mode data set: two keyed
// in-memory collections (leads by id, orders by order code) guarded by a
// single mutex. Values go in and come out by copy; callers never see the
// internal maps.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/danverse/danverse-api/internal/entity"
)

type Store struct {
	mu       sync.RWMutex
	leads    map[string]entity.Lead
	leadSeq  []string
	orders   map[string]entity.Order
	orderSeq []string
}

func New() *Store {
	return &Store{
		leads:  make(map[string]entity.Lead),
		orders: make(map[string]entity.Order),
	}
}

func (s *Store) InsertLead(lead entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[lead.ID]; exists {
		return entity.ErrDuplicateKey
	}
	s.leads[lead.ID] = lead
	s.leadSeq = append(s.leadSeq, lead.ID)
	return nil
}

func (s *Store) InsertOrder(order entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderCode]; exists {
		return entity.ErrDuplicateKey
	}
	s.orders[order.OrderCode] = order
	s.orderSeq = append(s.orderSeq, order.OrderCode)
	return nil
}

func (s *Store) Lead(id string) (entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return entity.Lead{}, entity.ErrNotFound
	}
	return lead, nil
}

func (s *Store) Order(code string) (entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[code]
	if !ok {
		return entity.Order{}, entity.ErrNotFound
	}
	return order, nil
}

// UpdateOrder applies a partial update and refreshes the updated timestamp.
func (s *Store) UpdateOrder(code string, patch entity.OrderPatch, now time.Time) (entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[code]
	if !ok {
		return entity.Order{}, entity.ErrNotFound
	}
	order.Apply(patch, now)
	s.orders[code] = order
	return order, nil
}

func (s *Store) LeadsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

func (s *Store) OrdersCount(f entity.OrderFilter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, order := range s.orders {
		if f.Matches(&order) {
			count++
		}
	}
	return count
}

// RecentLeads returns up to n leads, most recent first. Creation-time ties
// keep insertion order.
func (s *Store) RecentLeads(n int) []entity.Lead {
	leads := s.AllLeads()
	if n >= 0 && len(leads) > n {
		leads = leads[:n]
	}
	return leads
}

func (s *Store) RecentOrders(n int) []entity.Order {
	orders := s.AllOrders()
	if n >= 0 && len(orders) > n {
		orders = orders[:n]
	}
	return orders
}

func (s *Store) AllLeads() []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]entity.Lead, 0, len(s.leadSeq))
	for _, id := range s.leadSeq {
		leads = append(leads, s.leads[id])
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	return leads
}

func (s *Store) AllOrders() []entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]entity.Order, 0, len(s.orderSeq))
	for _, code := range s.orderSeq {
		orders = append(orders, s.orders[code])
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

// LeadMap returns a copy of the lead collection keyed by id.
func (s *Store) LeadMap() map[string]entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entity.Lead, len(s.leads))
	for id, lead := range s.leads {
		out[id] = lead
	}
	return out
}

// OrderMap returns a copy of the order collection keyed by order code.
func (s *Store) OrderMap() map[string]entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entity.Order, len(s.orders))
	for code, order := range s.orders {
		out[code] = order
	}
	return out
}

// HydrateLeads merges decoded cookie contents into the store. Entries already
// in memory win; the cookie only fills gaps after a cold start.
func (s *Store) HydrateLeads(leads map[string]entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range sortedLeads(leads) {
		if _, exists := s.leads[lead.ID]; exists {
			continue
		}
		s.leads[lead.ID] = lead
		s.leadSeq = append(s.leadSeq, lead.ID)
	}
}

func (s *Store) HydrateOrders(orders map[string]entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range sortedOrders(orders) {
		if _, exists := s.orders[order.OrderCode]; exists {
			continue
		}
		s.orders[order.OrderCode] = order
		s.orderSeq = append(s.orderSeq, order.OrderCode)
	}
}

// ReplaceAll atomically swaps both collections. Used only by snapshot import.
func (s *Store) ReplaceAll(leads map[string]entity.Lead, orders map[string]entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = make(map[string]entity.Lead, len(leads))
	s.leadSeq = s.leadSeq[:0]
	for _, lead := range sortedLeads(leads) {
		s.leads[lead.ID] = lead
		s.leadSeq = append(s.leadSeq, lead.ID)
	}

	s.orders = make(map[string]entity.Order, len(orders))
	s.orderSeq = s.orderSeq[:0]
	for _, order := range sortedOrders(orders) {
		s.orders[order.OrderCode] = order
		s.orderSeq = append(s.orderSeq, order.OrderCode)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = make(map[string]entity.Lead)
	s.leadSeq = nil
	s.orders = make(map[string]entity.Order)
	s.orderSeq = nil
}

// Rehydrated entries lose their original insertion order, so creation time is
// the best reconstruction we have.
func sortedLeads(leads map[string]entity.Lead) []entity.Lead {
	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func sortedOrders(orders map[string]entity.Order) []entity.Order {
	out := make([]entity.Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderCode < out[j].OrderCode
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
