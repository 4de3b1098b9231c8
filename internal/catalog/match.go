package catalog

import "github.com/iudanet/masterdata/internal/models"

// Matches reports whether two records denote the same real-world
// product: equal non-empty ID_produktu, else equal non-empty SKU, else
// equal non-empty EAN. Values are compared as trimmed strings (null
// reads as ""), so the integer 12345 matches the text "12345".
//
// Two records that are both missing an identity field never match on
// it; otherwise every pair of incomplete records would collapse into
// one during import.
func Matches(a, b *models.Product) bool {
	if identityEqual(a, b, models.AttrIDProduktu) {
		return true
	}
	if identityEqual(a, b, models.AttrSKU) {
		return true
	}
	return identityEqual(a, b, models.AttrEAN)
}

func identityEqual(a, b *models.Product, attr string) bool {
	av := a.Attr(attr).Norm()
	bv := b.Attr(attr).Norm()
	return av != "" && bv != "" && av == bv
}
