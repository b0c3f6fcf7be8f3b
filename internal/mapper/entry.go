// Package mapper turns raw export records into CanonicalEntry values, the
// destination-agnostic form of one credential.
package mapper

import "strings"

// DefaultName is used when a record carries no usable name.
const DefaultName = "Unnamed Entry"

// ExtraValue is the value of an extra attribute: a single string or an
// ordered list of strings.
type ExtraValue struct {
	text  string
	items []string
	list  bool
}

// Text returns a single-string value.
func Text(s string) ExtraValue { return ExtraValue{text: s} }

// List returns a list value.
func List(items ...string) ExtraValue {
	return ExtraValue{items: append([]string{}, items...), list: true}
}

// IsList reports whether the value is a list.
func (v ExtraValue) IsList() bool { return v.list }

// Items returns the list elements, or the single string as a one-element list.
func (v ExtraValue) Items() []string {
	if v.list {
		return append([]string{}, v.items...)
	}
	return []string{v.text}
}

// String returns the value with list elements joined by newlines.
func (v ExtraValue) String() string {
	if v.list {
		return strings.Join(v.items, "\n")
	}
	return v.text
}

// ExtraField is one attribute that has no dedicated destination field.
type ExtraField struct {
	Key   string
	Value ExtraValue
}

// CanonicalEntry is the normalized form of one record. It is immutable: the
// only permitted change, a new name, produces a copy via WithName.
type CanonicalEntry struct {
	name       string
	username   string
	password   string
	url        string
	extraURLs  []string
	note       string
	totpSecret string
	createdAt  string
	modifiedAt string
	extras     []ExtraField
}

func (e CanonicalEntry) Name() string       { return e.name }
func (e CanonicalEntry) Username() string   { return e.username }
func (e CanonicalEntry) Password() string   { return e.password }
func (e CanonicalEntry) URL() string        { return e.url }
func (e CanonicalEntry) Note() string       { return e.note }
func (e CanonicalEntry) TOTPSecret() string { return e.totpSecret }

// CreatedAt returns the creation time as an ISO-8601 string.
func (e CanonicalEntry) CreatedAt() string { return e.createdAt }

// ModifiedAt returns the modification time as an ISO-8601 string.
func (e CanonicalEntry) ModifiedAt() string { return e.modifiedAt }

// ExtraURLs returns every URL after the first, or nil when there is at most one.
func (e CanonicalEntry) ExtraURLs() []string {
	if e.extraURLs == nil {
		return nil
	}
	return append([]string{}, e.extraURLs...)
}

// Extras returns the extra attributes in mapping order.
func (e CanonicalEntry) Extras() []ExtraField {
	out := make([]ExtraField, len(e.extras))
	copy(out, e.extras)
	return out
}

// Extra looks up an extra attribute by its exact key.
func (e CanonicalEntry) Extra(key string) (ExtraValue, bool) {
	for _, f := range e.extras {
		if f.Key == key {
			return f.Value, true
		}
	}
	return ExtraValue{}, false
}

// WithName returns a copy of e carrying a different name.
func (e CanonicalEntry) WithName(name string) CanonicalEntry {
	e.name = name
	return e
}
