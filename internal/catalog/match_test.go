package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/masterdata/internal/models"
)

// prod builds a record from attribute values; the zero Value means null.
func prod(attrs map[string]models.Value) *models.Product {
	p := models.NewProduct()
	for name, v := range attrs {
		p.Set(name, v)
	}
	return p
}

func TestMatches(t *testing.T) {
	tests := []struct {
		a    map[string]models.Value
		b    map[string]models.Value
		name string
		want bool
	}{
		{
			name: "equal product ids",
			a:    map[string]models.Value{models.AttrIDProduktu: models.Number(12345)},
			b:    map[string]models.Value{models.AttrIDProduktu: models.Number(12345)},
			want: true,
		},
		{
			name: "numeric id matches textual id",
			a:    map[string]models.Value{models.AttrIDProduktu: models.Number(12345)},
			b:    map[string]models.Value{models.AttrIDProduktu: models.String(" 12345 ")},
			want: true,
		},
		{
			name: "different ids but equal sku",
			a:    map[string]models.Value{models.AttrIDProduktu: models.Number(1), models.AttrSKU: models.String("AB-1")},
			b:    map[string]models.Value{models.AttrIDProduktu: models.Number(2), models.AttrSKU: models.String("AB-1")},
			want: true,
		},
		{
			name: "equal ean only",
			a:    map[string]models.Value{models.AttrEAN: models.String("5901234123457")},
			b:    map[string]models.Value{models.AttrEAN: models.String("5901234123457")},
			want: true,
		},
		{
			name: "empty ids never match each other",
			a:    map[string]models.Value{models.AttrSKU: models.String("")},
			b:    map[string]models.Value{models.AttrSKU: models.String("  ")},
			want: false,
		},
		{
			name: "all identity fields empty on both sides",
			a:    map[string]models.Value{models.AttrNazwa: models.String("A")},
			b:    map[string]models.Value{models.AttrNazwa: models.String("A")},
			want: false,
		},
		{
			name: "different everything",
			a:    map[string]models.Value{models.AttrIDProduktu: models.Number(1), models.AttrSKU: models.String("A"), models.AttrEAN: models.String("111")},
			b:    map[string]models.Value{models.AttrIDProduktu: models.Number(2), models.AttrSKU: models.String("B"), models.AttrEAN: models.String("222")},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(prod(tt.a), prod(tt.b)))
		})
	}
}

func TestMatches_SelfMatch(t *testing.T) {
	// A record with any non-empty identity field matches itself.
	withID := prod(map[string]models.Value{models.AttrIDProduktu: models.Number(9)})
	assert.True(t, Matches(withID, withID))

	withSKU := prod(map[string]models.Value{models.AttrSKU: models.String("X")})
	assert.True(t, Matches(withSKU, withSKU))

	blank := prod(nil)
	assert.False(t, Matches(blank, blank))
}
