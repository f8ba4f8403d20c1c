package table

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-sig"
	EncodingLatin1  = "latin1"
	EncodingCP1252  = "cp1252"
)

// FallbackEncodings are tried, in order, after the preferred encoding.
var FallbackEncodings = []string{EncodingUTF8, EncodingUTF8BOM, EncodingLatin1, EncodingCP1252}

// Candidates returns the preferred encoding followed by the fallbacks, without repeats.
func Candidates(preferred string) []string {
	var out []string
	seen := map[string]bool{}
	for _, enc := range append([]string{preferred}, FallbackEncodings...) {
		enc = NormalizeEncoding(enc)
		if enc == "" || seen[enc] {
			continue
		}
		seen[enc] = true
		out = append(out, enc)
	}
	return out
}

// NormalizeEncoding maps common aliases onto the supported encoding names.
func NormalizeEncoding(enc string) string {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "utf-8", "utf8":
		return EncodingUTF8
	case "utf-8-sig", "utf8-sig", "utf-8-bom":
		return EncodingUTF8BOM
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1
	case "cp1252", "windows-1252":
		return EncodingCP1252
	case "":
		return ""
	default:
		return strings.ToLower(strings.TrimSpace(enc))
	}
}

// Decode converts raw bytes in the named encoding to UTF-8. A leading byte
// order mark is dropped for the UTF-8 variants.
func Decode(raw []byte, enc string) ([]byte, error) {
	switch NormalizeEncoding(enc) {
	case EncodingUTF8, EncodingUTF8BOM:
		b, err := io.ReadAll(utfbom.SkipOnly(bytes.NewReader(raw)))
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("invalid UTF-8 byte sequence")
		}
		return b, nil
	case EncodingLatin1:
		return transformBytes(charmap.ISO8859_1, raw)
	case EncodingCP1252:
		return transformBytes(charmap.Windows1252, raw)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

func transformBytes(cm *charmap.Charmap, raw []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(cm.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", cm.String(), err)
	}
	return decoded, nil
}
