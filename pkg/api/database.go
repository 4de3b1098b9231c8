package api

// UploadResponse answers POST /api/database/upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Merged  bool   `json:"merged"`
	Source  string `json:"source"`
}

// ClearRequest is the POST /api/database/clear body. Confirm must be
// true; clearing is the one mutation undo cannot reach.
type ClearRequest struct {
	Confirm bool   `json:"confirm"`
	UserID  string `json:"user_id,omitempty"`
}

// ClearResponse reports how many records were wiped.
type ClearResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

// WorkSaveRequest is the POST /api/work/save body.
type WorkSaveRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// WorkspaceInfo describes one saved base.
type WorkspaceInfo struct {
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
	Size      int64  `json:"size"`
}

// WorkSaveResponse answers POST /api/work/save.
type WorkSaveResponse struct {
	Success bool          `json:"success"`
	Base    WorkspaceInfo `json:"base"`
}

// WorkListResponse answers GET /api/work/list.
type WorkListResponse struct {
	Bases []WorkspaceInfo `json:"bases"`
}

// WorkLoadRequest is the POST /api/work/load body.
type WorkLoadRequest struct {
	Filename string `json:"filename"`
	UserID   string `json:"user_id,omitempty"`
}

// WorkLoadResponse answers POST /api/work/load.
type WorkLoadResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// BackupCreateResponse answers POST /api/backup/create.
type BackupCreateResponse struct {
	Success  bool  `json:"success"`
	BackupID int64 `json:"backup_id"`
}

// RestoreResponse answers POST /api/restore-from-backup.
type RestoreResponse struct {
	Success bool `json:"success"`
}
