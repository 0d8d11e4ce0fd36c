package dialect

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// DecodeView decodes a base64 view definition as produced by introspection.
// On malformed input it returns encoded unchanged along with the error, so
// callers can still inspect the raw text.
func (c Config) DecodeView(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded, fmt.Errorf("decode view definition: %w", err)
	}
	if c.ViewEncoding != UTF16LE {
		return string(raw), nil
	}
	text, err := utf16le().NewDecoder().Bytes(raw)
	if err != nil {
		return encoded, fmt.Errorf("decode utf-16 view definition: %w", err)
	}
	return string(text), nil
}

// EncodeView is the inverse of DecodeView.
func (c Config) EncodeView(definition string) (string, error) {
	raw := []byte(definition)
	if c.ViewEncoding == UTF16LE {
		var err error
		raw, err = utf16le().NewEncoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("encode utf-16 view definition: %w", err)
		}
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func utf16le() encoding.Encoding {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}
