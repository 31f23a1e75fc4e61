package xlsync

import (
	"errors"
	"fmt"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/projector"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/reconcile"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/store"
)

var (
	// ErrNoObjects indicates that there was nothing to synchronize.
	ErrNoObjects = projector.ErrNoObjects
	// ErrNoTable indicates an update of a table that does not exist.
	ErrNoTable = reconcile.ErrNoTable
	// ErrFileNotFound indicates the workbook file does not exist.
	ErrFileNotFound = store.ErrNotExist
	// ErrSheetNotFound indicates the worksheet does not exist.
	ErrSheetNotFound = errors.New("worksheet not found")
	// ErrInvalidRange indicates a range that is neither an address range nor
	// a defined name.
	ErrInvalidRange = store.ErrInvalidRange
	// ErrUnsupportedRequest indicates a request kind Query does not handle.
	ErrUnsupportedRequest = errors.New("unsupported request")
)

// ErrorKind represents the category of an Error.
type ErrorKind string

const (
	// KindInput covers bad arguments: empty or mixed input, unknown modes
	// and requests, and updates of missing tables or files.
	KindInput ErrorKind = "input"
	// KindResource covers workbook access: missing or corrupt files, missing
	// worksheets and unparsable ranges.
	KindResource ErrorKind = "resource"
	// KindPersistence covers failures to write the workbook.
	KindPersistence ErrorKind = "persistence"
	// KindShape covers target types that cannot hold records.
	KindShape ErrorKind = "shape"
)

// Error is the error returned by Synchronize and Query.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("xlsync: %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("xlsync: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// newError creates a new Error.
func newError(kind ErrorKind, op, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// classify wraps err into an Error whose kind follows from the cause.
func classify(op string, err error) *Error {
	var (
		e        *Error
		mixed    *projector.MixedTypesError
		shape    *projector.ShapeError
		mode     *reconcile.UnsupportedModeError
		corrupt  *store.CorruptError
		notExist store.ErrSheetNotExist
	)

	switch {
	case errors.As(err, &e):
		return e
	case errors.As(err, &shape):
		return newError(KindShape, op, "invalid record type", err)
	case errors.Is(err, ErrNoObjects), errors.As(err, &mixed):
		return newError(KindInput, op, "invalid objects", err)
	case errors.As(err, &mode):
		return newError(KindInput, op, "invalid mode", err)
	case errors.Is(err, ErrNoTable), errors.Is(err, reconcile.ErrNoData):
		return newError(KindInput, op, "invalid table state", err)
	case errors.Is(err, ErrUnsupportedRequest):
		return newError(KindInput, op, "invalid request", err)
	case errors.Is(err, ErrFileNotFound):
		return newError(KindResource, op, "workbook not found", err)
	case errors.As(err, &corrupt):
		return newError(KindResource, op, "workbook unreadable", err)
	case errors.As(err, &notExist):
		return newError(KindResource, op, "worksheet not found", fmt.Errorf("%w: %w", ErrSheetNotFound, err))
	case errors.Is(err, ErrSheetNotFound):
		return newError(KindResource, op, "worksheet not found", err)
	case errors.Is(err, ErrInvalidRange):
		return newError(KindResource, op, "invalid range", err)
	}
	return newError(KindResource, op, "workbook operation failed", err)
}

// panicError converts a recovered panic value into an Error.
func panicError(op string, r interface{}) *Error {
	if err, ok := r.(error); ok {
		return newError(KindResource, op, "unexpected failure", err)
	}
	return newError(KindResource, op, "unexpected failure", fmt.Errorf("%v", r))
}
