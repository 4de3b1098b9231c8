// Package api holds the wire types of the HTTP interface. Product
// payloads travel as raw JSON so that clients without the server's
// record model can still use these types.
package api

import "encoding/json"

// ErrorResponse is the uniform error body. Error is a stable reference
// string (snake_case), Message a human-readable Polish detail when one
// exists.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ProductListResponse answers GET /api/products.
type ProductListResponse struct {
	Products      json.RawMessage `json:"products"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	TotalFiltered int             `json:"total_filtered"`
	TotalAll      int             `json:"total_all"`
	TotalPages    int             `json:"total_pages"`
}

// UpdateFieldRequest is the PATCH /api/products/{id} body. Value may be
// a JSON string, number, or null. UserID attributes the edit when no
// session token is presented.
type UpdateFieldRequest struct {
	Field  string          `json:"field"`
	Value  json.RawMessage `json:"value"`
	UserID string          `json:"user_id,omitempty"`
}

// UpdateFieldResponse echoes the stored value.
type UpdateFieldResponse struct {
	Success bool            `json:"success"`
	Value   json.RawMessage `json:"value"`
}

// BatchUpdateRequest is the POST /api/products/batch-update body.
// IDs are numbers; numeric strings are tolerated.
type BatchUpdateRequest struct {
	IDs    []json.RawMessage `json:"ids"`
	Field  string            `json:"field"`
	Value  json.RawMessage   `json:"value"`
	UserID string            `json:"user_id,omitempty"`
}

// BatchUpdateResponse reports how many records changed.
type BatchUpdateResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}

// BatchDeleteRequest is the POST /api/products/batch-delete body.
type BatchDeleteRequest struct {
	IDs    []json.RawMessage `json:"ids"`
	UserID string            `json:"user_id,omitempty"`
}

// BatchDeleteResponse reports the deleted and remaining counts.
type BatchDeleteResponse struct {
	Success   bool `json:"success"`
	Deleted   int  `json:"deleted"`
	Remaining int  `json:"remaining"`
}

// ColumnValuesResponse answers GET /api/column-values.
type ColumnValuesResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// ProducersResponse answers GET /api/producers.
type ProducersResponse struct {
	Producers []string `json:"producers"`
}

// DuplicateGroup is one shared identity value.
type DuplicateGroup struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	IDs   []int64 `json:"ids"`
}

// DuplicatesResponse answers GET /api/duplicates.
type DuplicatesResponse struct {
	Field      string           `json:"field"`
	Duplicates []DuplicateGroup `json:"duplicates"`
}

// SummaryResponse answers GET /api/summary.
type SummaryResponse struct {
	Total            int `json:"total"`
	MissingProducer  int `json:"missing_producer"`
	MissingSKU       int `json:"missing_sku"`
	MissingEAN       int `json:"missing_ean"`
	UnavailableCount int `json:"unavailable_count"`
}
