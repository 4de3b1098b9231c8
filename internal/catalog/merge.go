package catalog

import "github.com/iudanet/masterdata/internal/models"

// Merge reconciles an incoming collection with the existing one.
// Each incoming record consumes the first not-yet-used existing record
// it Matches (linear scan, first match wins, no backtracking); the
// merged record is the incoming one with null or blank attributes
// backfilled from the match. Incoming data wins on conflict. Existing
// records nobody matched are appended unchanged, in their original
// order, after all incoming records.
//
// A numeric zero is a present value and is never backfilled; only
// null and blank text count as gaps here.
func Merge(existing, incoming []*models.Product) []*models.Product {
	result := make([]*models.Product, 0, len(incoming)+len(existing))
	used := make([]bool, len(existing))

	for _, in := range incoming {
		merged := in.Clone()
		for i, ex := range existing {
			if used[i] {
				continue
			}
			if !Matches(ex, in) {
				continue
			}
			used[i] = true
			backfill(merged, ex)
			break
		}
		result = append(result, merged)
	}

	for i, ex := range existing {
		if !used[i] {
			result = append(result, ex.Clone())
		}
	}
	return result
}

// backfill copies every attribute the destination is missing (null or
// blank text) from src.
func backfill(dst, src *models.Product) {
	for _, name := range models.AttributeNames {
		v := dst.Attr(name)
		if v.IsNull() || (v.IsString() && v.Norm() == "") {
			dst.Set(name, src.Attr(name))
		}
	}
}
