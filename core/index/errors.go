package index

import (
	"fmt"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("index")

var (
	// A mutation was attempted through a reader whose segments snapshot
	// is older than the directory's current one.
	ErrStaleReader = errors.New("IndexReader out of date and no longer valid for delete, undelete, or setNorm operations")
	// Terms must be added to a TermInfosWriter in strictly ascending order.
	ErrTermOutOfOrder = errors.New("term out of order")
	// Postings file pointers must never decrease.
	ErrPointerRegression = errors.New("postings pointer out of order")
	// Merged postings must have strictly ascending document numbers.
	ErrDocsOutOfOrder = errors.New("docs out of order")
	ErrAlreadyClosed  = errors.New("already closed")
	ErrIndexNotFound  = errors.New("no segments file found")
	// A length or count read from disk is impossible for a valid index.
	ErrCorruptIndex = errors.New("corrupt index")
)

// An unknown or unsupported on-disk format version.
type FormatError struct {
	Resource string
	Version  int32
	Expected int32
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Unknown format version: %v (expected %v) in %v",
		e.Version, e.Expected, e.Resource)
}

func assertTrue(ok bool) {
	if !ok {
		panic("assert fail")
	}
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
