package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/pkg/api"
)

// ProductService is the catalog surface the product endpoints need.
type ProductService interface {
	List(ctx context.Context, q catalog.Query) (catalog.Result, error)
	ColumnValues(ctx context.Context, column string) ([]string, error)
	ProducerNames(ctx context.Context) ([]string, error)
	DuplicateReport(ctx context.Context, field string) ([]catalog.Duplicate, error)
	Summary(ctx context.Context) (catalog.Summary, error)
	UpdateField(ctx context.Context, key int64, field string, value models.Value, actor string) (models.Value, error)
	BatchUpdate(ctx context.Context, keys []int64, field string, value models.Value, actor string) (int, error)
	BatchDelete(ctx context.Context, keys []int64, actor string) (deleted, remaining int, err error)
}

// ProductsHandler serves the browse and mutation endpoints.
type ProductsHandler struct {
	logger *slog.Logger
	svc    ProductService
}

// NewProductsHandler creates the products handler.
func NewProductsHandler(logger *slog.Logger, svc ProductService) *ProductsHandler {
	return &ProductsHandler{logger: logger, svc: svc}
}

// HandleList handles GET /api/products.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	result, err := h.svc.List(r.Context(), q)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []*models.Product{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ProductListResponse{
		Products:      raw,
		Page:          result.Page,
		PageSize:      result.PageSize,
		TotalFiltered: result.TotalFiltered,
		TotalAll:      result.TotalAll,
		TotalPages:    result.TotalPages,
	})
}

// queryFromRequest translates the URL parameters into a catalog query.
// Unknown parameters are ignored; malformed numeric ones are errors.
func queryFromRequest(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()
	q := catalog.Query{
		Producer:        params.Get("producer"),
		ExcludeProducer: params.Get("exclude_producer"),
		Search:          params.Get("search"),
		FilterColumn:    params.Get("filter_column"),
		SortBy:          params.Get("sort_by"),
		SortOrder:       params.Get("sort_order"),
	}

	if v := params.Get("filter_values"); v != "" {
		q.FilterValues = strings.Split(v, ",")
	}
	if v := params.Get("filter_empty"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return catalog.Query{}, err
		}
		q.FilterEmpty = &n
	}
	if v := params.Get("missing"); v != "" {
		q.MissingFlags = strings.Split(v, ",")
	}
	if v := params.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return catalog.Query{}, err
		}
		q.Page = n
	}
	if v := params.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return catalog.Query{}, err
		}
		q.PageSize = n
	}
	return q, nil
}

// HandleColumnValues handles GET /api/column-values?column=Tryb.
func (h *ProductsHandler) HandleColumnValues(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		writeError(w, http.StatusBadRequest, "column_required", "parametr column jest wymagany")
		return
	}

	values, err := h.svc.ColumnValues(r.Context(), column)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, api.ColumnValuesResponse{Column: column, Values: values})
}

// HandleProducers handles GET /api/producers.
func (h *ProductsHandler) HandleProducers(w http.ResponseWriter, r *http.Request) {
	producers, err := h.svc.ProducerNames(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if producers == nil {
		producers = []string{}
	}
	writeJSON(w, http.StatusOK, api.ProducersResponse{Producers: producers})
}

// HandleDuplicates handles GET /api/duplicates?field=ean|sku.
func (h *ProductsHandler) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")

	dups, err := h.svc.DuplicateReport(r.Context(), field)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	groups := make([]api.DuplicateGroup, 0, len(dups))
	for _, d := range dups {
		groups = append(groups, api.DuplicateGroup{Value: d.Value, Count: d.Count, IDs: d.IDs})
	}
	if field == "" {
		field = "ean"
	}
	writeJSON(w, http.StatusOK, api.DuplicatesResponse{Field: field, Duplicates: groups})
}

// HandleSummary handles GET /api/summary.
func (h *ProductsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.SummaryResponse{
		Total:            s.Total,
		MissingProducer:  s.MissingProducer,
		MissingSKU:       s.MissingSKU,
		MissingEAN:       s.MissingEAN,
		UnavailableCount: s.UnavailableCount,
	})
}

// HandleUpdate handles PATCH /api/products/{id}.
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ids", "niepoprawny identyfikator rekordu")
		return
	}

	var req api.UpdateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	stored, err := h.svc.UpdateField(r.Context(), key, req.Field, parseValue(req.Value), actorFrom(r, req.UserID))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UpdateFieldResponse{Success: true, Value: raw})
}

// HandleBatchUpdate handles POST /api/products/batch-update.
func (h *ProductsHandler) HandleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.BatchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	keys, err := parseIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ids", "niepoprawne identyfikatory rekordów")
		return
	}

	updated, err := h.svc.BatchUpdate(r.Context(), keys, req.Field, parseValue(req.Value), actorFrom(r, req.UserID))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BatchUpdateResponse{Success: true, Updated: updated})
}

// HandleBatchDelete handles POST /api/products/batch-delete.
func (h *ProductsHandler) HandleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req api.BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	keys, err := parseIDs(req.IDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ids", "niepoprawne identyfikatory rekordów")
		return
	}

	deleted, remaining, err := h.svc.BatchDelete(r.Context(), keys, actorFrom(r, req.UserID))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BatchDeleteResponse{Success: true, Deleted: deleted, Remaining: remaining})
}
