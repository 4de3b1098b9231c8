package models

// Kind classifies a product attribute as textual or numeric.
// Numeric attributes are stored as numbers by the relational backend;
// textual attributes are stored as trimmed strings.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// Attribute names addressed directly by code. The full schema lives in
// AttributeNames; everything else is accessed by name only.
const (
	AttrIDProduktu      = "ID_produktu"
	AttrSKU             = "SKU"
	AttrEAN             = "EAN"
	AttrNazwa           = "Nazwa"
	AttrNazwaProducenta = "Nazwa_producenta"
	AttrWagaBrutto      = "Waga_brutto"
	AttrDostepnosc      = "Dostepnosc"
)

// AttributeNames is the fixed product schema in canonical order.
// The order is the column order of the master JSON file and of every
// export; it never changes at runtime. Tryb is the workflow column
// (nowe | w trakcie | gotowe) added on top of the supplier feed.
var AttributeNames = []string{
	AttrIDProduktu, "Tryb", "Status_produktu", AttrSKU, AttrNazwa, "URL_Miniatura",
	"Rodzaj_produktu", "Grupa_produktu", AttrEAN, "JM_sprzedazy", AttrWagaBrutto,
	"JM_wagi", "Dlugosc", "Szerokosc", "Wysokosc", "JM_wymiaru",
	"Objetosc_produktu", "JM_objetosci", "Rodzaj_opakowania", "ID_producenta",
	AttrNazwaProducenta, "Cena_zakupu_netto", "Cena_zakupu_brutto", "Waluta_zakupu",
	"Nazwa_Cennika", "Cena_sprzedazy_netto", "Cena_sprzedazy_brutto", "Waluta_sprzedazy",
	"Stan_magazynowy", "Rezerwacja", AttrDostepnosc,
}

// numericAttrs are stored as NUMERIC by the relational backend.
// Dostepnosc is deliberately text: the JSON feed sends a number, the
// XML feed sends a word, and both must survive a round trip.
var numericAttrs = map[string]struct{}{
	AttrIDProduktu: {}, "ID_producenta": {}, AttrWagaBrutto: {},
	"Dlugosc": {}, "Szerokosc": {}, "Wysokosc": {}, "Objetosc_produktu": {},
	"Cena_zakupu_netto": {}, "Cena_zakupu_brutto": {},
	"Cena_sprzedazy_netto": {}, "Cena_sprzedazy_brutto": {},
	"Stan_magazynowy": {}, "Rezerwacja": {},
}

var attrIndex = func() map[string]int {
	m := make(map[string]int, len(AttributeNames))
	for i, name := range AttributeNames {
		m[name] = i
	}
	return m
}()

// IsAttribute reports whether name belongs to the fixed schema.
func IsAttribute(name string) bool {
	_, ok := attrIndex[name]
	return ok
}

// AttributeKind returns the declared kind of an attribute.
// The second result is false for names outside the schema.
func AttributeKind(name string) (Kind, bool) {
	if !IsAttribute(name) {
		return KindText, false
	}
	if _, ok := numericAttrs[name]; ok {
		return KindNumeric, true
	}
	return KindText, true
}
