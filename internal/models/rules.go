package models

import (
	"strconv"
	"strings"
)

// Producer names long enough to wreck the filter dropdowns, collapsed
// to the aliases the editors actually use. Applied wherever producer
// identity is compared; the stored value is never rewritten.
const (
	producerSalagLegal = "SALAG SPÓŁKA Z OGRANICZONĄ ODPOWIEDZIALNOŚCIĄ"
	producerCeramika   = "CERAMIKA ILONA PIETRZAK"
)

// ShortProducerName canonicalizes a producer value. Only the two
// known legal names collapse; everything else passes through
// unchanged, including non-string values.
func ShortProducerName(v Value) Value {
	if !v.IsString() {
		return v
	}
	switch strings.ToUpper(strings.TrimSpace(v.Text())) {
	case producerSalagLegal:
		return String("SALAG")
	case producerCeramika:
		return String("Ceramika")
	}
	return v
}

// IsMissing reports the plain missing-data rule: null or blank text.
func IsMissing(v Value) bool {
	if v.IsNull() {
		return true
	}
	if v.IsString() {
		return strings.TrimSpace(v.Text()) == ""
	}
	return false
}

// IsMissingWeight treats a present-but-zero gross weight as missing.
// A 0 kg product is a data entry hole, not a weightless product; the
// missing-data reports depend on this asymmetry.
func IsMissingWeight(v Value) bool {
	if IsMissing(v) {
		return true
	}
	f, ok := v.Float()
	return ok && f == 0
}

// Empty classifies an attribute value for the column-emptiness filter:
// null, blank text, the literal "0", or a numeric zero all count as
// empty. Waga_brutto uses the weight rule. Non-empty text that does
// not parse as a number is NOT empty.
func (p *Product) Empty(attr string) bool {
	v := p.Attr(attr)
	if attr == AttrWagaBrutto {
		return IsMissingWeight(v)
	}
	if v.IsNull() {
		return true
	}
	if v.IsString() {
		s := strings.TrimSpace(v.Text())
		if s == "" || s == "0" {
			return true
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f == 0
	}
	f, _ := v.Number()
	return f == 0
}

// CoerceNumeric converts a value for storage in a numeric column. A
// comma decimal separator is tolerated (supplier exports use it);
// values that still do not parse are stored as null, never rejected.
func CoerceNumeric(v Value) Value {
	if v.IsNull() {
		return v
	}
	if f, ok := v.Number(); ok {
		return Number(f)
	}
	s := strings.TrimSpace(v.Text())
	if s == "" {
		return Null()
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return Null()
	}
	return Number(f)
}

// CoerceForStorage applies the relational backend's storage rules:
// numeric attributes are coerced to numbers, textual attributes to
// trimmed strings.
func CoerceForStorage(attr string, v Value) Value {
	if kind, ok := AttributeKind(attr); ok && kind == KindNumeric {
		return CoerceNumeric(v)
	}
	if v.IsNull() {
		return v
	}
	return String(strings.TrimSpace(v.Text()))
}
