package source

import (
	"context"
	"fmt"
	"io"
)

// RawRecord is one credential item as decoded from the export, shaped as
//
//	{ "createTime": n, "modifyTime": n,
//	  "data": { "metadata": {...}, "content": {...} } }
//
// No key is guaranteed to be present.
type RawRecord struct {
	obj *Object
}

// NewRawRecord wraps a decoded item. A nil object yields an empty record.
func NewRawRecord(obj *Object) RawRecord {
	return RawRecord{obj: obj}
}

// Root returns the whole item.
func (r RawRecord) Root() *Object { return r.obj }

// Data returns the "data" section.
func (r RawRecord) Data() *Object {
	d, _ := r.obj.Object("data")
	return d
}

// Metadata returns "data.metadata".
func (r RawRecord) Metadata() *Object {
	m, _ := r.Data().Object("metadata")
	return m
}

// Content returns "data.content".
func (r RawRecord) Content() *Object {
	c, _ := r.Data().Object("content")
	return c
}

// Vault is a named group of records.
type Vault struct {
	ID    string
	Name  string
	Items []RawRecord
}

// Document is the decoded export: vaults in the order they were stored.
type Document struct {
	Vaults []Vault
}

// ParseDocument decodes an export document. The top level must be an object
// carrying a "vaults" object keyed by vault identifier.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := ParseObject(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}

	vaults, ok := root.Object("vaults")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"vaults\" object", ErrMalformedSource)
	}

	doc := &Document{Vaults: make([]Vault, 0, vaults.Len())}
	var perr error
	vaults.Range(func(id string, v any) bool {
		obj, ok := v.(*Object)
		if !ok {
			perr = fmt.Errorf("%w: vault %q is not an object", ErrMalformedSource, id)
			return false
		}
		doc.Vaults = append(doc.Vaults, parseVault(id, obj))
		return true
	})
	if perr != nil {
		return nil, perr
	}

	return doc, nil
}

func parseVault(id string, obj *Object) Vault {
	name, ok := obj.String("name")
	if !ok || name == "" {
		name = id
	}

	vault := Vault{ID: id, Name: name}
	items, _ := obj.Array("items")
	for _, it := range items {
		rec, _ := it.(*Object)
		vault.Items = append(vault.Items, NewRawRecord(rec))
	}
	return vault
}

// Visitor receives the document contents from Walk.
type Visitor interface {
	// VisitVault is called once per vault before any of its records.
	VisitVault(ctx context.Context, v Vault) error
	// VisitRecord is called for every record of the vault last visited.
	VisitRecord(ctx context.Context, v Vault, rec RawRecord) error
}

// Walk visits vaults and their records in document order. It stops at the
// first error returned by the visitor or when ctx is done.
func (d *Document) Walk(ctx context.Context, visitor Visitor) error {
	for _, v := range d.Vaults {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visitor.VisitVault(ctx, v); err != nil {
			return err
		}
		for _, rec := range v.Items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := visitor.VisitRecord(ctx, v, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCount returns the total number of records across all vaults.
func (d *Document) RecordCount() int {
	n := 0
	for _, v := range d.Vaults {
		n += len(v.Items)
	}
	return n
}
