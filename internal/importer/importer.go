// Package importer parses inbound product collections: the master JSON
// array and the supplier XML feed. Both are lenient about values and
// strict about shape; a wrong top-level structure is rejected, a bad
// field is nulled.
package importer

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iudanet/masterdata/internal/models"
)

// ErrInvalidFormat marks an upload whose structure is not a product
// collection at all.
var ErrInvalidFormat = errors.New("invalid format")

// FromJSON reads a master-file upload: a top-level JSON array of
// records. Objects, scalars, and broken JSON are all ErrInvalidFormat.
func FromJSON(r io.Reader) ([]*models.Product, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidFormat)
	}

	var products []*models.Product
	for dec.More() {
		p := models.NewProduct()
		if err := dec.Decode(p); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidFormat, len(products)+1, err)
		}
		products = append(products, p)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// supplierTags maps the XML feed's element names onto schema
// attributes. Tags outside the map are ignored.
var supplierTags = map[string]string{
	"Id_produktu":     models.AttrIDProduktu,
	"Nr_katalogowy":   models.AttrSKU,
	"Nazwa_produktu":  models.AttrNazwa,
	"Kod_ean":         models.AttrEAN,
	"Producent":       models.AttrNazwaProducenta,
	"Waga":            models.AttrWagaBrutto,
	"Cena_brutto":     "Cena_sprzedazy_brutto",
	"Cena_netto":      "Cena_sprzedazy_netto",
	"Cena_zakupu":     "Cena_zakupu_brutto",
	"Ilosc_produktow": "Stan_magazynowy",
	"Jednostka_miary": "JM_sprzedazy",
	"Dostepnosc":      models.AttrDostepnosc,
	"Kategorie_id":    "Grupa_produktu",
}

// xmlProduct captures every child element of a <Produkt> node; the tag
// map decides which ones matter. Matching is by local name, so the
// supplier's namespace churn does not break the import.
type xmlProduct struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// FromSupplierXML reads the supplier feed: <Produkt> elements at any
// depth, known child tags mapped onto attributes. Numeric fields accept
// comma decimals; anything unparseable loads as null.
func FromSupplierXML(r io.Reader) ([]*models.Product, error) {
	dec := xml.NewDecoder(r)

	var products []*models.Product
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Produkt" {
			continue
		}

		var raw xmlProduct
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidFormat, len(products)+1, err)
		}
		products = append(products, productFromXML(raw))
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no Produkt elements", ErrInvalidFormat)
	}
	return products, nil
}

func productFromXML(raw xmlProduct) *models.Product {
	p := models.NewProduct()
	for _, f := range raw.Fields {
		attr, ok := supplierTags[f.XMLName.Local]
		if !ok {
			continue
		}
		text := strings.TrimSpace(f.Value)
		if text == "" {
			continue
		}
		if kind, _ := models.AttributeKind(attr); kind == models.KindNumeric {
			p.Set(attr, models.CoerceNumeric(models.String(text)))
			continue
		}
		p.Set(attr, models.String(text))
	}
	p.Source = "xml"
	return p
}
