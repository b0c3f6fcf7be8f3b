// Package models defines the rows persisted in a vault database.
package models

// Group is a row of vault_groups. ParentID is empty for the root group.
type Group struct {
	ID       string
	ParentID string
	Name     string
}

// Entry is a row of vault_entries.
//
// Everything but the identifiers is sealed in Details. TitleMAC is a keyed
// digest of the title so uniqueness per group can be enforced without
// storing the title in the clear.
type Entry struct {
	// ID is a globally unique identifier for the entry.
	ID string

	// GroupID references the owning group.
	GroupID string

	// TitleMAC is HMAC-SHA256(master key, title).
	TitleMAC []byte

	// Details contains the AEAD ciphertext of the entry payload.
	Details []byte
	// NonceDetails is the AEAD nonce for Details.
	NonceDetails []byte
}
