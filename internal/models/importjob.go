package models

import "time"

// Import job statuses.
const (
	ImportPending    = "pending"
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
	ImportCancelled  = "cancelled"
)

// ImportJob is the status record for one asynchronous file import. Jobs live
// in a process-wide in-memory registry; all outcomes, including failure, are
// observable only through this record.
type ImportJob struct {
	ID            string         `json:"id"`
	FileName      string         `json:"file_name"`
	FileType      string         `json:"file_type"`
	FileSize      int            `json:"file_size"`
	FileHash      string         `json:"file_hash"`
	OwnerID       string         `json:"owner_id"`
	Status        string         `json:"status"`
	Progress      int            `json:"progress"` // 0-100
	UnitCount     int            `json:"unit_count"`
	RelationCount int            `json:"relation_count"`
	GraphID       string         `json:"graph_id,omitempty"`
	Error         string         `json:"error,omitempty"`
	Options       ImportOptions  `json:"options"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ProcessingEnd *time.Time     `json:"processing_end,omitempty"`
}

// ImportOptions tunes one import run. Zero values select the defaults.
type ImportOptions struct {
	SkipEnhancement bool `json:"skip_enhancement,omitempty"`
	SkipRelations   bool `json:"skip_relations,omitempty"`
	MaxPairs        int  `json:"max_pairs,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j *ImportJob) Terminal() bool {
	switch j.Status {
	case ImportCompleted, ImportFailed, ImportCancelled:
		return true
	}

	return false
}
