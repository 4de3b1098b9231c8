package models

import "time"

// ChangeEntry is one audit-log record: who changed what to what, and
// when. Entries are append-only; nothing ever edits one in place.
type ChangeEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Actor     string    `json:"user_id"`
	Field     string    `json:"field_name"`
	NewValue  string    `json:"new_value"`
	ProductID int64     `json:"id_produktu"`
	ID        int64     `json:"id"`
}

// SnapshotInfo describes one undo snapshot without its payload.
type SnapshotInfo struct {
	TakenAt time.Time `json:"-"`
	ID      string    `json:"id"`
	Action  string    `json:"action"`
	// Timestamp is the raw sortable form, FormattedTime the one the
	// history panel displays.
	Timestamp     string `json:"timestamp"`
	FormattedTime string `json:"formatted_time"`
}

// ChangeGroup is one day of audit entries, newest day first, with the
// per-entry display lines already rendered.
type ChangeGroup struct {
	DateLabel string   `json:"date_label"`
	Entries   []string `json:"entries"`
}

// WorkspaceInfo describes one saved base (manual "save my work" copy).
type WorkspaceInfo struct {
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
	Size      int64  `json:"size"`
	ID        int64  `json:"id,omitempty"`
}
