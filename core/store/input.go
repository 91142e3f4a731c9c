package store

import (
	"fmt"
	"io"

	"github.com/dbalmain/ferret-sub000/core/util"
)

// store/IndexInput.java

/*
Abstract base for input from a file in a Directory. A random-access
input stream. Used for all index data reads.

An IndexInput is not safe for concurrent use. Every consumer that
needs its own position calls Clone(); clones share the underlying
file but keep independent file pointers. Closing a clone is a no-op
for the shared resource.
*/
type IndexInput interface {
	util.DataInput
	io.Closer
	// Returns the current position in this file, where the next read
	// will occur.
	FilePointer() int64
	// Sets current position in this file, where the next read will
	// occur.
	Seek(pos int64) error
	// The number of bytes in the file.
	Length() int64
	// Returns a clone positioned at the same offset.
	Clone() IndexInput
}

type IndexInputImpl struct {
	*util.DataInputImpl
	desc string
}

func NewIndexInputImpl(desc string, r util.DataReader) *IndexInputImpl {
	assert2(desc != "", "resourceDescription must not be empty")
	return &IndexInputImpl{util.NewDataInput(r), desc}
}

func (in *IndexInputImpl) String() string {
	return in.desc
}

// Returns an error describing a read beyond the end of desc.
func readPastEOF(desc fmt.Stringer) error {
	return fmt.Errorf("%w: %v", ErrReadPastEOF, desc)
}
