package vaultdb

import (
	"fmt"
	"time"
)

// Group is a folder of entries. The root group has an empty ParentID.
type Group struct {
	ID       string
	ParentID string
	Name     string
}

// Property is a named custom string attached to an entry.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry is one credential. Everything except the identifiers is sealed
// into the database as JSON when the store is saved.
type Entry struct {
	ID      string `json:"-"`
	GroupID string `json:"-"`

	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	OTP      string `json:"otp,omitempty"`

	CreationTime     time.Time `json:"creation_time"`
	ModificationTime time.Time `json:"modification_time"`

	Properties []Property `json:"properties,omitempty"`
}

// SetCustomProperty sets name to value. Setting an existing name replaces its
// value in place.
func (e *Entry) SetCustomProperty(name, value string) {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			e.Properties[i].Value = value
			return
		}
	}
	e.Properties = append(e.Properties, Property{Name: name, Value: value})
}

// CustomProperty returns the value stored under name.
func (e *Entry) CustomProperty(name string) (string, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// SetCreationTime parses an ISO-8601 timestamp into CreationTime.
func (e *Entry) SetCreationTime(iso string) error {
	t, err := parseISO(iso)
	if err != nil {
		return fmt.Errorf("creation time: %w", err)
	}
	e.CreationTime = t
	return nil
}

// SetModificationTime parses an ISO-8601 timestamp into ModificationTime.
func (e *Entry) SetModificationTime(iso string) error {
	t, err := parseISO(iso)
	if err != nil {
		return fmt.Errorf("modification time: %w", err)
	}
	e.ModificationTime = t
	return nil
}

func parseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
