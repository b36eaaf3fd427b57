package parser

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// decodeUTF8 strips a leading byte order mark and replaces invalid byte
// sequences with U+FFFD instead of failing.
func decodeUTF8(data []byte) string {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}
