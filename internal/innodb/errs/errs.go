// Package errs defines the error taxonomy shared by the innodbrecover
// decoder packages: a small closed set of error kinds, attached to plain
// wrapped errors so callers can branch with errors.Is/errors.As without a
// third-party errors package.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of forensic-decoder error kinds.
type Kind int

const (
	// InvalidLength means a buffer was not the expected fixed size.
	InvalidLength Kind = iota
	// InvalidChecksum means a stored checksum matched neither reference
	// checksum function. Page framing never raises this itself — see
	// Page.ValidChecksum.
	InvalidChecksum
	// InvalidPage means a structural invariant was violated: a record
	// type outside the closed enum, a page header that doesn't match the
	// requested (space_id, page_number), an incomplete LOB reassembly.
	InvalidPage
	// PageNotFound means the requested page is absent from its backing
	// tablespace file (e.g. the all-zero (0,0) sentinel span).
	PageNotFound
	// InvalidPageType means a page was wrapped as a specific page kind
	// (Index, LobFirst, LobData) but its header.PageType disagreed.
	InvalidPageType
)

func (k Kind) String() string {
	switch k {
	case InvalidLength:
		return "InvalidLength"
	case InvalidChecksum:
		return "InvalidChecksum"
	case InvalidPage:
		return "InvalidPage"
	case PageNotFound:
		return "PageNotFound"
	case InvalidPageType:
		return "InvalidPageType"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error wraps an underlying error with a Kind, so callers can test
// errors.Is(err, errs.InvalidPage) style sentinels via Is.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Kind, allowing
// errors.Is(err, errs.New(errs.InvalidPage, "")) style kind checks, and
// also supports matching against a bare Kind via errors.Is semantics on
// sentinel values created with New(k, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs a *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs a *Error of the given kind, wrapping err.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel kind markers for errors.Is(err, errs.KindInvalidPage) style
// checks against a bare kind value, without needing to build a dummy *Error.
var (
	KindInvalidLength    = New(InvalidLength, "")
	KindInvalidChecksum  = New(InvalidChecksum, "")
	KindInvalidPage      = New(InvalidPage, "")
	KindPageNotFound     = New(PageNotFound, "")
	KindInvalidPageType  = New(InvalidPageType, "")
)

// Of reports the Kind of err if it (or something it wraps) is an *Error,
// and ok=true; otherwise ok=false.
func Of(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
