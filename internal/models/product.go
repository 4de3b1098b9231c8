package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// attrCount must match len(AttributeNames).
const attrCount = 31

// Product is one catalog record: the fixed attribute schema plus the
// backend bookkeeping fields. RowID is the relational primary key
// (zero when the record lives in the flat file); Source records which
// feed the record came from (json or xml).
type Product struct {
	values [attrCount]Value
	Source string
	RowID  int64
}

// NewProduct returns a record with every attribute null.
func NewProduct() *Product { return &Product{} }

// Get returns the value of a schema attribute. ok is false for names
// outside the schema; the value is then null.
func (p *Product) Get(name string) (Value, bool) {
	i, ok := attrIndex[name]
	if !ok {
		return Null(), false
	}
	return p.values[i], true
}

// Attr is Get without the existence flag, for attributes known to be
// part of the schema.
func (p *Product) Attr(name string) Value {
	v, _ := p.Get(name)
	return v
}

// Set assigns a schema attribute. Unknown names are rejected so that a
// typo can never grow the schema.
func (p *Product) Set(name string, v Value) bool {
	i, ok := attrIndex[name]
	if !ok {
		return false
	}
	p.values[i] = v
	return true
}

// Clone returns a copy of the record.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// Export returns a copy stripped of backend bookkeeping, shaped exactly
// like the inbound master JSON.
func (p *Product) Export() *Product {
	c := *p
	c.RowID = 0
	c.Source = ""
	return &c
}

// MarshalJSON writes attributes in schema order. Records owned by the
// relational backend additionally carry their primary key and feed
// source, which the UI needs to address rows.
func (p *Product) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if p.RowID > 0 {
		fmt.Fprintf(&buf, `"id":%d,`, p.RowID)
		src, err := json.Marshal(p.Source)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"source":`)
		buf.Write(src)
		buf.WriteByte(',')
	}
	for i, name := range AttributeNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a record leniently: known attributes are taken
// as-is, absent attributes stay null, unknown keys are ignored. The
// optional id/source bookkeeping keys are honoured when present.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("product is not a JSON object: %w", err)
	}
	*p = Product{}
	for name, i := range attrIndex {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		// Value.UnmarshalJSON never fails on scalars; keep going anyway.
		_ = p.values[i].UnmarshalJSON(msg)
	}
	if msg, ok := raw["id"]; ok {
		var id int64
		if err := json.Unmarshal(msg, &id); err == nil {
			p.RowID = id
		}
	}
	if msg, ok := raw["source"]; ok {
		var src string
		if err := json.Unmarshal(msg, &src); err == nil {
			p.Source = src
		}
	}
	return nil
}

// ExportCollection strips backend bookkeeping from every record,
// preserving order. Used by download and workspace saves so that a
// saved base can be re-imported as a master file.
func ExportCollection(products []*Product) []*Product {
	out := make([]*Product, len(products))
	for i, p := range products {
		out[i] = p.Export()
	}
	return out
}
