package snapshot

import "time"

// Well-known read-model keys.
const (
	KeyResults     = "results"
	KeySchedule    = "schedule"
	KeyLeagueTable = "league-table"
	KeyStatsTable  = "stats-table"
)

// Snapshot is one complete read-model materialization. Payload is
// always a whole JSON document, replaced wholesale on rebuild, so
// readers never observe a partial delta.
type Snapshot struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}
