package api

// SnapshotInfo describes one undo step.
type SnapshotInfo struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	Timestamp     string `json:"timestamp"`
	FormattedTime string `json:"formatted_time"`
}

// HistoryResponse answers GET /api/history.
type HistoryResponse struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
}

// UndoRequest is the POST /api/history/undo body.
type UndoRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// UndoResponse answers POST /api/history/undo.
type UndoResponse struct {
	Success    bool   `json:"success"`
	RestoredID string `json:"restored_id"`
}

// ChangeEntry is one audit-trail record on the wire.
type ChangeEntry struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	UserID    string `json:"user_id"`
	ProductID int64  `json:"id_produktu"`
	Field     string `json:"field_name"`
	NewValue  string `json:"new_value"`
}

// ChangesSinceResponse answers GET /api/changes-since.
type ChangesSinceResponse struct {
	Changes []ChangeEntry `json:"changes"`
	LastID  int64         `json:"last_id"`
}

// ChangeGroup is one day of the rendered journal.
type ChangeGroup struct {
	DateLabel string   `json:"date_label"`
	Entries   []string `json:"entries"`
}

// ChangeLogResponse answers GET /api/change-log.
type ChangeLogResponse struct {
	Groups []ChangeGroup `json:"groups"`
}

// StatsResponse answers GET /api/stats.
type StatsResponse struct {
	Total            int   `json:"total"`
	MissingProducer  int   `json:"missing_producer"`
	MissingSKU       int   `json:"missing_sku"`
	MissingEAN       int   `json:"missing_ean"`
	UnavailableCount int   `json:"unavailable_count"`
	ModifiedCount    int64 `json:"modified_count"`
}

// ResetModifiedResponse answers POST /api/stats/reset-modified.
type ResetModifiedResponse struct {
	Success bool `json:"success"`
}
