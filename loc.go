package skemacore

import (
	"strconv"
	"strings"
)

// Loc identifies the traversal path from a call's root to the value an Issue
// describes. Segments are field names (string) or sequence indexes (int),
// in traversal order.
type Loc []any

// escape '~' -> '~0', '/' -> '~1' per RFC 6901.
var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders the location as a JSON Pointer ("/" for the root).
func (l Loc) Pointer() string {
	if len(l) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range l {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			b.WriteString(pointerEscaper.Replace(s))
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			b.WriteString(pointerEscaper.Replace(segmentString(seg)))
		}
	}
	return b.String()
}

// Field returns a copy of the location extended by a field-name segment.
func (l Loc) Field(name string) Loc {
	out := make(Loc, len(l), len(l)+1)
	copy(out, l)
	return append(out, name)
}

// Index returns a copy of the location extended by an index segment.
func (l Loc) Index(i int) Loc {
	out := make(Loc, len(l), len(l)+1)
	copy(out, l)
	return append(out, i)
}

func (l Loc) clone() Loc {
	if len(l) == 0 {
		return nil
	}
	out := make(Loc, len(l))
	copy(out, l)
	return out
}

func segmentString(seg any) string {
	switch s := seg.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// locFromPointer parses a JSON Pointer back into a Loc. Purely numeric
// tokens become index segments. Used when adopting issues produced by the
// token-level decoder, which reports pointer strings.
func locFromPointer(p string) Loc {
	if p == "" || p == "/" {
		return nil
	}
	parts := strings.Split(p, "/")
	var out Loc
	for _, part := range parts {
		if part == "" {
			continue
		}
		tok := strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if i, err := strconv.Atoi(tok); err == nil && !strings.HasPrefix(tok, "+") {
			out = append(out, i)
			continue
		}
		out = append(out, tok)
	}
	return out
}
