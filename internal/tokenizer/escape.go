package tokenizer

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

// longest named reference in the HTML5 table is 32 bytes plus '&' and ';'
const maxReference = 34

// unescape resolves backslash escapes and character references in a
// literal text segment, in a single left-to-right pass so an escaped '&'
// is never decoded afterwards.
func unescape(b []byte) string {
	if bytes.IndexByte(b, '\\') < 0 && bytes.IndexByte(b, '&') < 0 {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '\\' && i+1 < len(b) && util.IsPunct(b[i+1]):
			sb.WriteByte(b[i+1])
			i++
		case c == '&':
			if n := referenceLen(b[i:]); n > 0 {
				ref := string(b[i : i+n])
				if dec := html.UnescapeString(ref); dec != ref {
					sb.WriteString(dec)
					i += n - 1
					continue
				}
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// referenceLen returns the length of the "&...;" candidate at the start
// of b, or 0 when there is none.
func referenceLen(b []byte) int {
	end := len(b)
	if end > maxReference {
		end = maxReference
	}
	for i := 1; i < end; i++ {
		switch c := b[i]; {
		case c == ';':
			if i == 1 {
				return 0
			}
			return i + 1
		case c == '#' && i == 1:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return 0
		}
	}
	return 0
}
