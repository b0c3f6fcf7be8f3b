package mapper

import (
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dmitrijs2005/vaultport/internal/sanitize"
	"github.com/dmitrijs2005/vaultport/internal/source"
)

// TimeLayout is the ISO-8601 form used for CanonicalEntry timestamps.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Epoch seconds outside [minEpoch, maxEpoch] cannot render as a four-digit
// year and are treated as missing.
var (
	minEpoch = float64(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxEpoch = float64(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix())
)

// standardKeys are the lower-cased keys that have a dedicated field and are
// therefore left out of the extra attributes.
var standardKeys = map[string]struct{}{
	"name":       {},
	"username":   {},
	"password":   {},
	"urls":       {},
	"note":       {},
	"totp":       {},
	"createtime": {},
	"modifytime": {},
	"add_urls":   {},
}

// Mapper converts raw records into canonical entries.
type Mapper struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithClock sets the clock consulted for records without timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) { m.now = now }
}

// WithLocation sets the zone timestamps are rendered in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(m *Mapper) { m.loc = loc }
}

// New returns a Mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Map derives the canonical entry for rec. It never fails: missing or
// mistyped fields fall back to defaults.
func (m *Mapper) Map(rec source.RawRecord) CanonicalEntry {
	meta := rec.Metadata()
	content := rec.Content()

	e := CanonicalEntry{
		name:       entryName(meta),
		username:   discoverUsername(content),
		password:   sanitize.EscapeFieldText(stringField(content, "password")),
		note:       sanitize.EscapeNoteText(stringField(meta, "note")),
		totpSecret: stringField(content, "totpUri"),
		createdAt:  m.timestamp(rec.Root(), "createTime"),
		modifiedAt: m.timestamp(rec.Root(), "modifyTime"),
		extras:     collectExtras(meta, content),
	}
	e.url, e.extraURLs = splitURLs(content)

	return e
}

func entryName(meta *source.Object) string {
	name, ok := meta.String("name")
	if !ok || strings.TrimSpace(name) == "" {
		return DefaultName
	}
	return name
}

func stringField(obj *source.Object, key string) string {
	s, _ := obj.String(key)
	return s
}

// discoverUsername is a best-effort search over an unstructured content
// section. The first non-blank string whose key mentions "username" or
// "email" wins, in document order; "login" and "user" are the fallbacks.
func discoverUsername(content *source.Object) string {
	var found string
	content.Range(func(key string, v any) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return true
		}
		k := strings.ToLower(key)
		if strings.Contains(k, "username") || strings.Contains(k, "email") {
			found = s
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	for _, key := range []string{"login", "user"} {
		if s := strings.TrimSpace(stringField(content, key)); s != "" {
			return s
		}
	}
	return ""
}

func splitURLs(content *source.Object) (string, []string) {
	raw, _ := content.Array("urls")

	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if s, ok := u.(string); ok {
			urls = append(urls, s)
		}
	}

	switch len(urls) {
	case 0:
		return "", nil
	case 1:
		return urls[0], nil
	}
	return urls[0], urls[1:]
}

func (m *Mapper) timestamp(root *source.Object, key string) string {
	v, _ := root.Get(key)

	var secs float64
	switch n := v.(type) {
	case json.Number:
		secs, _ = n.Float64()
	case float64:
		secs = n
	}

	if secs == 0 || math.IsNaN(secs) || secs < minEpoch || secs > maxEpoch {
		return m.now().In(m.loc).Format(TimeLayout)
	}

	whole, frac := math.Modf(secs)
	t := time.Unix(int64(whole), int64(frac*1e9)).In(m.loc)
	if t.Year() < 0 || t.Year() > 9999 {
		return m.now().In(m.loc).Format(TimeLayout)
	}
	return t.Format(TimeLayout)
}

// collectExtras merges metadata and content (content wins on equal keys) and
// keeps every attribute without a dedicated field. Nulls are dropped.
func collectExtras(meta, content *source.Object) []ExtraField {
	merged := source.NewObject()
	meta.Range(func(k string, v any) bool { merged.Set(k, v); return true })
	content.Range(func(k string, v any) bool { merged.Set(k, v); return true })

	var extras []ExtraField
	merged.Range(func(k string, v any) bool {
		if _, std := standardKeys[strings.ToLower(k)]; std || v == nil {
			return true
		}
		extras = append(extras, ExtraField{Key: k, Value: extraValue(v)})
		return true
	})
	return extras
}

func extraValue(v any) ExtraValue {
	arr, ok := v.([]any)
	if !ok {
		return Text(scalarText(v))
	}
	items := make([]string, 0, len(arr))
	for _, it := range arr {
		items = append(items, scalarText(it))
	}
	return List(items...)
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
