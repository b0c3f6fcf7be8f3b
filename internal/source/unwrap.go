package source

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
)

var zipMagic = []byte("PK\x03\x04")

// IsPlain reports whether data already is an unencrypted export: a JSON
// document or a zip archive.
func IsPlain(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(data, zipMagic)
}

// Unwrap extracts the JSON document from a decrypted payload.
//
// A zip archive, possibly preceded by framing bytes, yields its first .json
// member. Otherwise the document is taken from the first '{' that opens an
// object (a key or '}' follows it), so leading framing bytes and trailing
// archive records are both discarded. A document that starts but does not
// decode is reported as malformed; objects nested in it are never tried.
func Unwrap(data []byte) ([]byte, error) {
	if bytes.Contains(data, zipMagic) {
		if doc, err := unzipDocument(data); err == nil {
			return doc, nil
		}
	}

	for off := 0; off < len(data); {
		i := bytes.IndexByte(data[off:], '{')
		if i < 0 {
			break
		}
		start := off + i
		off = start + 1

		if !opensObject(data[off:]) {
			continue
		}

		var raw json.RawMessage
		if err := json.NewDecoder(bytes.NewReader(data[start:])).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
		}
		return raw, nil
	}

	return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedSource)
}

// opensObject reports whether rest, the bytes after a '{', continue as a
// JSON object.
func opensObject(rest []byte) bool {
	rest = bytes.TrimLeft(rest, " \t\r\n")
	return len(rest) > 0 && (rest[0] == '"' || rest[0] == '}')
}

func unzipDocument(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var member *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".json") {
			member = f
			break
		}
	}
	if member == nil {
		return nil, fmt.Errorf("%w: archive holds no .json member", ErrMalformedSource)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
