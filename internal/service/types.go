package service

import (
	"time"

	"github.com/MimeLyc/artwork-curator/internal/persistence"
)

// RefreshResult summarizes one item refresh.
type RefreshResult struct {
	ItemPath       string                        `json:"item_path"`
	CandidateCount int                           `json:"candidate_count"`
	FromCache      bool                          `json:"from_cache"`
	Saved          []persistence.SelectionRecord `json:"saved"`
}

// ScheduleStatus reports where the library refresh schedule stands.
type ScheduleStatus struct {
	CronExpr string    `json:"cron_expr"`
	Last     time.Time `json:"last"`
	Next     time.Time `json:"next"`
}
