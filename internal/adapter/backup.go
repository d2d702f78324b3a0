package adapter

import (
	"time"

	"github.com/danverse/danverse-api/internal/entity"
)

// BackupTTL is deliberately longer than the cookie TTL; backups are meant to
// sit offline and be restored much later.
const BackupTTL = 30 * 24 * time.Hour

// Snapshot is the whole-store export artifact: every lead and order plus the
// export timestamp, sealed into a single token.
type Snapshot struct {
	Leads      map[string]entity.Lead  `json:"leads"`
	Orders     map[string]entity.Order `json:"orders"`
	ExportedAt time.Time               `json:"exportedAt"`
}
