package engine

import (
	"strconv"
	"strings"
)

// Streaming enforcement over a TokenSource: duplicate object keys, maximum
// nesting depth, and a byte budget are checked token by token, before any
// value is materialized.

// DupPolicy controls duplicate object keys.
type DupPolicy int

const (
	// DupError rejects the input on the first duplicated key.
	DupError DupPolicy = iota
	// DupLast keeps the last occurrence silently.
	DupLast
)

// EnforceOptions bundles the ingestion limits.
type EnforceOptions struct {
	OnDuplicate DupPolicy
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
	// MaxBytes bounds consumed input; zero means unlimited.
	MaxBytes int64
}

// Violation is the typed error the enforcing source returns. Code is one
// of "duplicate_key", "max_depth_exceeded", "max_bytes_exceeded"; Path is
// a JSON Pointer to the offending location.
type Violation struct {
	Code   string
	Path   string
	Key    string
	Offset int64
}

func (v *Violation) Error() string {
	switch v.Code {
	case "duplicate_key":
		return "duplicate object key '" + v.Key + "' at " + v.Path
	case "max_depth_exceeded":
		return "maximum nesting depth exceeded at " + v.Path
	default:
		return "input size budget exceeded"
	}
}

// WrapWithEnforcement layers the configured limits over inner.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingSource{inner: inner, opt: opt}
}

type enfFrame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
	haveKey    bool
}

type enforcingSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enfFrame
}

var _ TokenSource = (*enforcingSource)(nil)

func (e *enforcingSource) Location() int64 { return e.inner.Location() }

func (e *enforcingSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.tokenPath(tok)

	switch tok.Kind {
	case KindBeginObject:
		e.stack = append(e.stack, enfFrame{kind: kindObject, keys: make(map[string]struct{}), path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, &Violation{Code: "max_depth_exceeded", Path: normalizePath(path), Offset: tok.Offset}
		}
	case KindBeginArray:
		e.stack = append(e.stack, enfFrame{kind: kindArray, path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, &Violation{Code: "max_depth_exceeded", Path: normalizePath(path), Offset: tok.Offset}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject {
				if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate == DupError {
					return Token{}, &Violation{Code: "duplicate_key", Path: normalizePath(path), Key: tok.String, Offset: tok.Offset}
				}
				top.keys[tok.String] = struct{}{}
				top.pendingKey = tok.String
				top.haveKey = true
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, &Violation{Code: "max_bytes_exceeded", Path: normalizePath(path), Offset: off}
		}
	}
	return tok, nil
}

// valueDone marks the enclosing object frame's pending key as consumed.
func (e *enforcingSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject {
			top.pendingKey = ""
			top.haveKey = false
		}
	}
}

// tokenPath renders the JSON Pointer of the location the token applies to.
func (e *enforcingSource) tokenPath(tok Token) string {
	if len(e.stack) == 0 {
		if tok.Kind == KindKey {
			return joinPointer("", tok.String)
		}
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if top.haveKey {
			return joinPointer(top.path, top.pendingKey)
		}
		return top.path
	default:
		return top.path
	}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
