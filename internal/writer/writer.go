// Package writer stores canonical entries in a password database, resolving
// title collisions by suffixing a timestamp.
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/vaultport/internal/logging"
	"github.com/dmitrijs2005/vaultport/internal/mapper"
	"github.com/dmitrijs2005/vaultport/internal/sanitize"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb"
)

// AdditionalURLsProperty holds every URL after the first, one per line.
const AdditionalURLsProperty = "Additional URLs"

const (
	renameAttempts = 10
	renameBackoff  = time.Millisecond
	suffixLayout   = "2006-01-02_15-04-05"
)

var (
	// ErrDuplicateEntryUnresolved means every renamed title collided too.
	ErrDuplicateEntryUnresolved = errors.New("duplicate entry title could not be resolved")

	// ErrStoreWrite wraps any other failure reported by the destination.
	ErrStoreWrite = errors.New("store write failed")
)

// Destination is the part of a password database the writer needs.
// *vaultdb.Store satisfies it.
type Destination interface {
	AddEntry(ctx context.Context, group *vaultdb.Group, title, username, password string) (*vaultdb.Entry, error)
}

// Writer copies canonical entries into a Destination.
type Writer struct {
	now     func() time.Time
	log     logging.Logger
	renamed int
}

type Option func(*Writer)

// WithClock sets the clock used for collision suffixes.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(w *Writer) { w.log = l }
}

func New(opts ...Option) *Writer {
	w := &Writer{now: time.Now, log: logging.Discard()}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Renamed returns how many entries were stored under a suffixed title.
func (w *Writer) Renamed() int { return w.renamed }

// Write creates one entry in group and populates every field of e on it.
//
// A title already present in group is retried as "title-YYYY-MM-DD_HH-MM-SS-ffffff"
// up to ten times. Fields are set in place on the returned entry; an error
// while populating them leaves a partially filled entry behind.
func (w *Writer) Write(ctx context.Context, dst Destination, group *vaultdb.Group, e mapper.CanonicalEntry) (*vaultdb.Entry, error) {
	name := sanitize.StripControlChars(e.Name())
	username := sanitize.StripControlChars(e.Username())
	password := sanitize.StripControlChars(e.Password())

	entry, err := w.add(ctx, dst, group, name, username, password)
	if err != nil {
		return nil, err
	}

	entry.URL = sanitize.StripControlChars(e.URL())
	entry.Notes = sanitize.StripControlChars(e.Note())

	if err := entry.SetCreationTime(e.CreatedAt()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	if err := entry.SetModificationTime(e.ModifiedAt()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	if uri := e.TOTPSecret(); uri != "" {
		entry.OTP = sanitize.StripControlChars(sanitize.ExtractSharedSecret(uri))
	}

	if urls := e.ExtraURLs(); len(urls) > 0 {
		entry.SetCustomProperty(AdditionalURLsProperty, sanitize.StripControlChars(strings.Join(urls, "\n")))
	}

	for _, f := range e.Extras() {
		key := sanitize.StripControlChars(f.Key)
		value := sanitize.StripControlChars(f.Value.String())
		if key == "" || value == "" {
			continue
		}
		entry.SetCustomProperty(key, value)
	}

	return entry, nil
}

func (w *Writer) add(ctx context.Context, dst Destination, group *vaultdb.Group, name, username, password string) (*vaultdb.Entry, error) {
	entry, err := dst.AddEntry(ctx, group, name, username, password)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, vaultdb.ErrDuplicateTitle) {
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	var title string
	b := retry.WithMaxRetries(renameAttempts-1, retry.NewConstant(renameBackoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		title = w.suffixed(name)
		var err error
		entry, err = dst.AddEntry(ctx, group, title, username, password)
		if errors.Is(err, vaultdb.ErrDuplicateTitle) {
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
		w.renamed++
		w.log.Debug(ctx, "title collision resolved", "title", name, "stored_as", title)
		return entry, nil
	case errors.Is(err, vaultdb.ErrDuplicateTitle):
		return nil, fmt.Errorf("%w: %q", ErrDuplicateEntryUnresolved, name)
	case ctx.Err() != nil:
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
}

func (w *Writer) suffixed(name string) string {
	t := w.now()
	return fmt.Sprintf("%s-%s-%06d", name, t.Format(suffixLayout), t.Nanosecond()/1000)
}
