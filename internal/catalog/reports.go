package catalog

import (
	"sort"
	"strings"

	"github.com/iudanet/masterdata/internal/models"
)

// ColumnValues returns the unique non-empty values of one column,
// deduplicated case-insensitively and sorted for the filter dropdown.
// Unknown columns return nil.
func ColumnValues(products []*models.Product, column string) []string {
	if column == "" || !models.IsAttribute(column) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		s := p.Attr(column).Norm()
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// Producers lists the distinct canonicalized producer names.
func Producers(products []*models.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		name := strings.TrimSpace(models.ShortProducerName(p.Attr(models.AttrNazwaProducenta)).Text())
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Duplicate is one identity value shared by several records.
type Duplicate struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	IDs   []int64 `json:"ids"`
}

// Duplicates reports EAN or SKU values occurring more than once, for
// manual review before an import. At most ten record ids are listed
// per value. The id is the row key when present, else ID_produktu.
func Duplicates(products []*models.Product, field string) []Duplicate {
	if field != models.AttrEAN && field != models.AttrSKU {
		field = models.AttrEAN
	}
	counts := make(map[string][]int64)
	var order []string
	for _, p := range products {
		v := p.Attr(field).Norm()
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v] = append(counts[v], recordKey(p))
	}
	var out []Duplicate
	for _, v := range order {
		ids := counts[v]
		if len(ids) < 2 {
			continue
		}
		if len(ids) > 10 {
			ids = ids[:10]
		}
		out = append(out, Duplicate{Value: v, Count: len(counts[v]), IDs: ids})
	}
	return out
}

func recordKey(p *models.Product) int64 {
	if p.RowID > 0 {
		return p.RowID
	}
	if f, ok := p.Attr(models.AttrIDProduktu).Float(); ok {
		return int64(f)
	}
	return 0
}

// Summary is the dashboard header: collection size and missing-data
// counters.
type Summary struct {
	Total            int `json:"total_count"`
	MissingProducer  int `json:"missing_producer"`
	MissingSKU       int `json:"missing_sku"`
	MissingEAN       int `json:"missing_ean"`
	UnavailableCount int `json:"unavailable_count"`
}

// Summarize counts records with missing identity data and records that
// are unavailable. Availability is text from two different feeds, so
// empty, zero, and the Polish "unavailable" words all count.
func Summarize(products []*models.Product) Summary {
	s := Summary{Total: len(products)}
	for _, p := range products {
		if models.IsMissing(p.Attr(models.AttrNazwaProducenta)) {
			s.MissingProducer++
		}
		if models.IsMissing(p.Attr(models.AttrSKU)) {
			s.MissingSKU++
		}
		if models.IsMissing(p.Attr(models.AttrEAN)) {
			s.MissingEAN++
		}
		if isUnavailable(p.Attr(models.AttrDostepnosc)) {
			s.UnavailableCount++
		}
	}
	return s
}

func isUnavailable(v models.Value) bool {
	s := v.Norm()
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "0", "niedostępne", "niedostepne", "niedostępny", "niedostepny":
		return true
	}
	return false
}
