package catalog

import (
	"sort"
	"strings"

	"github.com/iudanet/masterdata/internal/models"
)

// MissingFlag names accepted by the missing-data filter. Each flag
// requires its attribute to be empty; active flags combine with AND.
// There is deliberately no flag for prices or stock; those go through
// the generic column-emptiness filter instead.
var MissingFlags = map[string]struct{}{
	"missing_producer": {},
	"missing_sku":      {},
	"missing_ean":      {},
	"missing_weight":   {},
}

// Query carries one read request through the filter, search, sort, and
// pagination pipeline.
type Query struct {
	// Producer keeps only records whose canonicalized producer equals
	// this (case-folded exact match); ExcludeProducer drops them.
	Producer        string
	ExcludeProducer string

	// Search is a free-text query against Nazwa. Tokens are matched
	// with whitespace stripped, so "3 x 4" finds "3x4".
	Search string

	// Column filter, mutually exclusive modes in priority order:
	// FilterValues (value-set) beats FilterEmpty (emptiness flag),
	// which beats MissingFlags.
	FilterColumn string
	FilterValues []string
	FilterEmpty  *int
	MissingFlags []string

	SortBy    string
	SortOrder string // asc or desc; anything else reads as asc

	Page     int
	PageSize int
}

// PageLimits clamp the requested page size.
type PageLimits struct {
	Default int
	Min     int
	Max     int
}

// DefaultPageLimits matches the UI's table: 200 rows by default,
// between 50 and 2000 on request.
var DefaultPageLimits = PageLimits{Default: 200, Min: 50, Max: 2000}

// Result is one page of a filtered collection plus the totals the
// pagination widget needs.
type Result struct {
	Items         []*models.Product
	Page          int
	PageSize      int
	TotalFiltered int
	TotalAll      int
	TotalPages    int
}

// Run executes the full read pipeline over a collection. Unknown
// filter columns are ignored (never an error); unknown sort columns
// leave the order untouched.
func Run(products []*models.Product, q Query, limits PageLimits) Result {
	filtered := Filter(products, q)
	Sort(filtered, q.SortBy, q.SortOrder)

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = limits.Default
	}
	if size < limits.Min {
		size = limits.Min
	}
	if size > limits.Max {
		size = limits.Max
	}

	total := len(filtered)
	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Items:         filtered[start:end],
		Page:          page,
		PageSize:      size,
		TotalFiltered: total,
		TotalAll:      len(products),
		TotalPages:    (total + size - 1) / size,
	}
}

// Filter applies the producer, column, and search filters, preserving
// input order.
func Filter(products []*models.Product, q Query) []*models.Product {
	producer := strings.ToLower(strings.TrimSpace(q.Producer))
	exclude := strings.ToLower(strings.TrimSpace(q.ExcludeProducer))
	search := strings.TrimSpace(q.Search)

	useValueFilter := q.FilterColumn != "" && models.IsAttribute(q.FilterColumn) && len(q.FilterValues) > 0
	useEmptyFilter := !useValueFilter && q.FilterColumn != "" && models.IsAttribute(q.FilterColumn) && q.FilterEmpty != nil

	valueSet := make(map[string]struct{}, len(q.FilterValues))
	for _, v := range q.FilterValues {
		valueSet[v] = struct{}{}
	}

	result := make([]*models.Product, 0, len(products))
	for _, p := range products {
		short := strings.TrimSpace(models.ShortProducerName(p.Attr(models.AttrNazwaProducenta)).Text())
		if producer != "" && strings.ToLower(short) != producer {
			continue
		}
		if exclude != "" && strings.ToLower(short) == exclude {
			continue
		}

		switch {
		case useValueFilter:
			if _, ok := valueSet[p.Attr(q.FilterColumn).Norm()]; !ok {
				continue
			}
		case useEmptyFilter:
			if p.Empty(q.FilterColumn) != (*q.FilterEmpty == 1) {
				continue
			}
		default:
			if !matchesMissingFlags(p, q.MissingFlags) {
				continue
			}
		}

		if search != "" && !matchesSearch(p, search) {
			continue
		}
		result = append(result, p)
	}
	return result
}

func matchesMissingFlags(p *models.Product, flags []string) bool {
	for _, flag := range flags {
		switch flag {
		case "missing_producer":
			if !models.IsMissing(p.Attr(models.AttrNazwaProducenta)) {
				return false
			}
		case "missing_sku":
			if !models.IsMissing(p.Attr(models.AttrSKU)) {
				return false
			}
		case "missing_ean":
			if !models.IsMissing(p.Attr(models.AttrEAN)) {
				return false
			}
		case "missing_weight":
			if !models.IsMissingWeight(p.Attr(models.AttrWagaBrutto)) {
				return false
			}
		}
	}
	return true
}

// normalizeForSearch strips all whitespace and lower-cases, so that
// "3 x 4" and "3x4" compare equal.
func normalizeForSearch(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// matchesSearch requires every whitespace-separated query token to
// appear, whitespace-stripped, somewhere in the normalized name. AND
// semantics, not a phrase match.
func matchesSearch(p *models.Product, query string) bool {
	name := normalizeForSearch(p.Attr(models.AttrNazwa).Text())
	if name == "" {
		return false
	}
	for _, token := range strings.Fields(query) {
		if !strings.Contains(name, normalizeForSearch(token)) {
			return false
		}
	}
	return true
}

// Sort orders the collection by one attribute in place. Records with a
// null or blank value always come first, in both directions; only
// valued records obey asc/desc. Numeric attributes compare as numbers,
// with unparseable values falling back to a case-insensitive string
// compare after every parsed number. Unknown attributes are a no-op.
func Sort(products []*models.Product, sortBy, order string) {
	if sortBy == "" || !models.IsAttribute(sortBy) {
		return
	}
	desc := strings.EqualFold(strings.TrimSpace(order), "desc")
	kind, _ := models.AttributeKind(sortBy)

	sort.SliceStable(products, func(i, j int) bool {
		a, b := sortKey(products[i], sortBy, kind), sortKey(products[j], sortBy, kind)
		if a.null != b.null {
			return a.null // nulls first, direction-invariant
		}
		if a.null {
			return false
		}
		less := a.less(b)
		if desc {
			return b.less(a)
		}
		return less
	})
}

type key struct {
	str     string
	num     float64
	null    bool
	numeric bool
}

func (k key) less(o key) bool {
	// Parsed numbers sort before unparseable strings.
	if k.numeric != o.numeric {
		return k.numeric
	}
	if k.numeric {
		return k.num < o.num
	}
	return k.str < o.str
}

func sortKey(p *models.Product, attr string, kind models.Kind) key {
	v := p.Attr(attr)
	if v.IsNull() || (v.IsString() && v.Norm() == "") {
		return key{null: true}
	}
	if kind == models.KindNumeric {
		if f, ok := v.Float(); ok {
			return key{num: f, numeric: true}
		}
	}
	return key{str: strings.ToLower(v.Text())}
}
