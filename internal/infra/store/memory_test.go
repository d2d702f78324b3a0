package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danverse/danverse-api/internal/entity"
)

func leadAt(id string, created time.Time) entity.Lead {
	return entity.Lead{ID: id, Email: id + "@example.com", Source: "website", CreatedAt: created}
}

func orderAt(code string, status entity.OrderStatus, created time.Time) entity.Order {
	return entity.Order{
		OrderCode:     code,
		Plan:          "starter",
		CustomerName:  "Test",
		CustomerEmail: "t@example.com",
		CustomerPhone: "+201000000000",
		Amount:        2999,
		Currency:      "EGP",
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestStore_InsertDuplicate(t *testing.T) {
	s := New()
	lead := leadAt("lead_1", time.Now())

	require.NoError(t, s.InsertLead(lead))
	assert.ErrorIs(t, s.InsertLead(lead), entity.ErrDuplicateKey)
	assert.Equal(t, 1, s.LeadsCount())
}

func TestStore_UpdateOrder(t *testing.T) {
	s := New()
	created := time.Now().Add(-time.Minute)
	require.NoError(t, s.InsertOrder(orderAt("DV-1", entity.StatusAwaitingProof, created)))

	paid := entity.StatusPaid
	method := "instapay"
	now := time.Now()
	updated, err := s.UpdateOrder("DV-1", entity.OrderPatch{Status: &paid, PaymentMethod: &method}, now)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPaid, updated.Status)
	assert.Equal(t, "instapay", updated.PaymentMethod)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = s.UpdateOrder("DV-missing", entity.OrderPatch{Status: &paid}, now)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestStore_CountWithFilter(t *testing.T) {
	s := New()
	now := time.Now()
	require.NoError(t, s.InsertOrder(orderAt("DV-1", entity.StatusPending, now)))
	require.NoError(t, s.InsertOrder(orderAt("DV-2", entity.StatusPaid, now)))
	require.NoError(t, s.InsertOrder(orderAt("DV-3", entity.StatusPaid, now)))

	assert.Equal(t, 3, s.OrdersCount(entity.OrderFilter{}))
	assert.Equal(t, 2, s.OrdersCount(entity.OrderFilter{Status: entity.StatusPaid}))
	assert.Equal(t, 0, s.OrdersCount(entity.OrderFilter{Status: entity.StatusRefunded}))
	assert.Equal(t, 3, s.OrdersCount(entity.OrderFilter{Plan: "starter"}))
}

func TestStore_RecentOrdering(t *testing.T) {
	s := New()
	t1 := time.Now().Add(-3 * time.Hour)
	t2 := time.Now().Add(-2 * time.Hour)
	t3 := time.Now().Add(-1 * time.Hour)

	require.NoError(t, s.InsertLead(leadAt("lead_a", t1)))
	require.NoError(t, s.InsertLead(leadAt("lead_b", t2)))
	require.NoError(t, s.InsertLead(leadAt("lead_c", t3)))

	recent := s.RecentLeads(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "lead_c", recent[0].ID)
	assert.Equal(t, "lead_b", recent[1].ID)

	all := s.AllLeads()
	require.Len(t, all, 3)
	assert.Equal(t, "lead_a", all[2].ID)
}

func TestStore_RecentTiesKeepInsertionOrder(t *testing.T) {
	s := New()
	ts := time.Now()
	require.NoError(t, s.InsertLead(leadAt("lead_first", ts)))
	require.NoError(t, s.InsertLead(leadAt("lead_second", ts)))

	recent := s.RecentLeads(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "lead_first", recent[0].ID)
	assert.Equal(t, "lead_second", recent[1].ID)
}

func TestStore_HydratePrefersWarmEntries(t *testing.T) {
	s := New()
	warm := leadAt("lead_1", time.Now())
	warm.Name = "in memory"
	require.NoError(t, s.InsertLead(warm))

	stale := leadAt("lead_1", time.Now().Add(-time.Hour))
	stale.Name = "from cookie"
	fresh := leadAt("lead_2", time.Now())

	s.HydrateLeads(map[string]entity.Lead{"lead_1": stale, "lead_2": fresh})

	got, err := s.Lead("lead_1")
	require.NoError(t, err)
	assert.Equal(t, "in memory", got.Name)
	assert.Equal(t, 2, s.LeadsCount())
}

func TestStore_ReplaceAllIsDestructive(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertLead(leadAt("lead_a", time.Now())))
	require.NoError(t, s.InsertLead(leadAt("lead_b", time.Now())))
	require.NoError(t, s.InsertOrder(orderAt("DV-1", entity.StatusPending, time.Now())))

	replacement := leadAt("lead_c", time.Now())
	s.ReplaceAll(map[string]entity.Lead{"lead_c": replacement}, nil)

	assert.Equal(t, 1, s.LeadsCount())
	assert.Equal(t, 0, s.OrdersCount(entity.OrderFilter{}))

	_, err := s.Lead("lead_a")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = s.Lead("lead_c")
	assert.NoError(t, err)
}

func TestStore_UniqueIdentities(t *testing.T) {
	seenIDs := make(map[string]struct{})
	seenCodes := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		seenIDs[entity.NewLeadID()] = struct{}{}
		seenCodes[entity.NewOrderCode()] = struct{}{}
	}
	assert.Len(t, seenIDs, 1000)
	assert.Len(t, seenCodes, 1000)
}
