// Package vaultdb is an encrypted SQLite password database.
//
// A store holds a tree of groups and their entries. Entry payloads are sealed
// with AES-GCM under a key derived from the store passphrase; titles are
// indexed by a keyed digest so duplicates can be rejected per group without
// keeping titles in the clear.
package vaultdb

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vaultport/internal/cryptox"
	"github.com/dmitrijs2005/vaultport/internal/dbx"
	"github.com/dmitrijs2005/vaultport/internal/filex"
	"github.com/dmitrijs2005/vaultport/internal/shared"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/repositories/entries"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/repositories/groups"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/repositories/metadata"

	_ "modernc.org/sqlite"
)

// RootGroupName is the name of the group every store is created with.
const RootGroupName = "Root"

const (
	saltSize = 16

	keySalt      = "salt"
	keyVerifier  = "verifier"
	keyRootGroup = "root_group"
)

// Store is an open vault database. It is not safe for concurrent use.
type Store struct {
	db   *sql.DB
	key  []byte
	root *Group
	now  func() time.Time

	// entries added through this handle, resealed on every Save
	added []*Entry
}

// Create makes a new, empty store at path protected by passphrase. An
// existing file at path is replaced.
func Create(ctx context.Context, path string, passphrase []byte) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	if err := filex.RemoveIfExists(path); err != nil {
		return nil, err
	}

	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}

	salt, err := shared.GenerateRandByteArray(saltSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key := cryptox.DeriveMasterKey(passphrase, salt)

	root := &Group{ID: uuid.NewString(), Name: RootGroupName}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		if err := meta.Set(ctx, keySalt, salt); err != nil {
			return err
		}
		if err := meta.Set(ctx, keyVerifier, cryptox.MakeVerifier(key)); err != nil {
			return err
		}
		if err := meta.Set(ctx, keyRootGroup, []byte(root.ID)); err != nil {
			return err
		}
		return groups.NewSQLiteRepository(tx).Create(ctx, &models.Group{ID: root.ID, Name: root.Name})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	return &Store{db: db, key: key, root: root, now: time.Now}, nil
}

// Open opens an existing store. A passphrase that does not match the one
// the store was created with yields ErrWrongPassphrase.
func Open(ctx context.Context, path string, passphrase []byte) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}

	s, err := unlock(ctx, db, passphrase)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func unlock(ctx context.Context, db *sql.DB, passphrase []byte) (*Store, error) {
	meta := metadata.NewSQLiteRepository(db)

	salt, err := meta.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	verifier, err := meta.Get(ctx, keyVerifier)
	if err != nil {
		return nil, err
	}
	rootID, err := meta.Get(ctx, keyRootGroup)
	if err != nil {
		return nil, err
	}
	if salt == nil || verifier == nil || rootID == nil {
		return nil, ErrNotVault
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return nil, ErrWrongPassphrase
	}

	s := &Store{db: db, key: key, now: time.Now}

	all, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range all {
		if g.ID == string(rootID) {
			s.root = g
		}
	}
	if s.root == nil {
		return nil, ErrNotVault
	}
	return s, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps the pragma below in effect for every statement
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Root returns the top-level group.
func (s *Store) Root() *Group { return s.root }

// AddGroup creates a child group of parent.
func (s *Store) AddGroup(ctx context.Context, parent *Group, name string) (*Group, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	g := &Group{ID: uuid.NewString(), ParentID: parent.ID, Name: name}
	err := groups.NewSQLiteRepository(s.db).Create(ctx, &models.Group{ID: g.ID, ParentID: g.ParentID, Name: g.Name})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// AddEntry creates an entry in group. Fields of the returned entry other
// than Title may be changed until the next Save. Titles are unique per group; a repeated title
// yields ErrDuplicateTitle and nothing is written.
func (s *Store) AddEntry(ctx context.Context, group *Group, title, username, password string) (*Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	repo := entries.NewSQLiteRepository(s.db)
	mac := cryptox.TitleMAC(s.key, title)

	taken, err := repo.ExistsTitle(ctx, group.ID, mac)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateTitle
	}

	now := s.now().UTC()
	e := &Entry{
		ID:               uuid.NewString(),
		GroupID:          group.ID,
		Title:            title,
		Username:         username,
		Password:         password,
		CreationTime:     now,
		ModificationTime: now,
	}

	row, err := s.seal(e)
	if err != nil {
		return nil, err
	}
	row.TitleMAC = mac

	if err := repo.Insert(ctx, row); err != nil {
		if errors.Is(err, entries.ErrTitleTaken) {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}

	s.added = append(s.added, e)
	return e, nil
}

// Save persists every change made to entries returned by AddEntry in a
// single transaction.
func (s *Store) Save(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entries.NewSQLiteRepository(tx)
		for _, e := range s.added {
			row, err := s.seal(e)
			if err != nil {
				return err
			}
			if err := repo.UpdateDetails(ctx, row); err != nil {
				return fmt.Errorf("save entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// Groups returns every group, the root first.
func (s *Store) Groups(ctx context.Context) ([]*Group, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := groups.NewSQLiteRepository(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Group, 0, len(rows))
	for _, r := range rows {
		result = append(result, &Group{ID: r.ID, ParentID: r.ParentID, Name: r.Name})
	}
	return result, nil
}

// Entries returns the saved entries of group in insertion order.
func (s *Store) Entries(ctx context.Context, group *Group) ([]*Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := entries.NewSQLiteRepository(s.db).GetByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	result := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		e := &Entry{}
		if err := cryptox.DecryptEntry(r.Details, r.NonceDetails, s.key, e); err != nil {
			return nil, fmt.Errorf("decrypt entry %s: %w", r.ID, err)
		}
		e.ID = r.ID
		e.GroupID = r.GroupID
		result = append(result, e)
	}
	return result, nil
}

// Close releases the database and wipes the key from memory. Unsaved changes
// are lost.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	shared.WipeByteArray(s.key)
	s.added = nil
	return err
}

func (s *Store) seal(e *Entry) (*models.Entry, error) {
	ct, nonce, err := cryptox.EncryptEntry(e, s.key)
	if err != nil {
		return nil, fmt.Errorf("seal entry: %w", err)
	}
	return &models.Entry{ID: e.ID, GroupID: e.GroupID, Details: ct, NonceDetails: nonce}, nil
}
