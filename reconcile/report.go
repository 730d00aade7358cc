package reconcile

import (
	"time"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/gates"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
)

// Report is the full output of one run.
type Report struct {
	RunID            string             `json:"run_id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Source           string             `json:"source,omitempty"`
	UnitScale        geometry.UnitScale `json:"unit_scale"`
	ScaleSource      boqio.ScaleSource  `json:"scale_source"`
	Stats            geometry.Stats     `json:"stats"`
	Profiles         []layers.Snapshot  `json:"profiles"`
	BlockProfiles    []layers.Snapshot  `json:"block_profiles,omitempty"`
	Rows             []StagedRow        `json:"rows"`
	ResolverWarnings []geometry.Warning `json:"resolver_warnings,omitempty"`
	Summary          Summary            `json:"summary"`
}

// Summary counts rows by status and bucket.
type Summary struct {
	Items        int            `json:"items"`
	Approved     int            `json:"approved"`
	Pending      int            `json:"pending"`
	Unmatched    int            `json:"unmatched"`
	TypeMismatch int            `json:"type_mismatch"`
	Buckets      map[Bucket]int `json:"buckets"`
	// Deviations counts rows whose derived quantity is far from the declared one.
	Deviations int `json:"deviations"`
}

func summarize(rows []StagedRow) Summary {
	s := Summary{Items: len(rows), Buckets: make(map[Bucket]int)}
	for _, r := range rows {
		switch r.Status {
		case StatusApproved:
			s.Approved++
		case StatusPending:
			s.Pending++
		case StatusUnmatched:
			s.Unmatched++
		case StatusTypeMismatch:
			s.TypeMismatch++
		}
		s.Buckets[r.Bucket]++
		for _, f := range r.Findings {
			if f.Code == gates.CodeDeclaredDeviation && f.Severity == gates.SeverityWarning {
				s.Deviations++
				break
			}
		}
	}
	return s
}
