package index

import (
	"fmt"
	"strings"

	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/Term.java

/*
A Term represents a word from text. This is the unit of search. It is
composed of two elements, the text of the word, as a string, and the
name of the field that the text occurred in.

Note that terms may represent more than words from text fields, but
also things like dates, email addresses, urls, etc.
*/
type Term struct {
	Field string
	Text  string
}

func NewTerm(fld, text string) *Term {
	return &Term{fld, text}
}

/*
Compares two terms, returning a negative integer if this term belongs
before the argument, zero if this term is equal to the argument, and a
positive integer if this term belongs after the argument.

The ordering of terms is first by field, then by text.
*/
func (t *Term) CompareTo(other *Term) int {
	if t.Field == other.Field {
		return strings.Compare(t.Text, other.Text)
	}
	return strings.Compare(t.Field, other.Field)
}

func (t *Term) Equals(other *Term) bool {
	return other != nil && t.Field == other.Field && t.Text == other.Text
}

func (t *Term) String() string {
	return fmt.Sprintf("%v:%v", t.Field, t.Text)
}

// index/TermBuffer.java

// Mutable decode buffer for front-coded dictionary entries.
type TermBuffer struct {
	field string
	text  []byte
	valid bool
	term  *Term // cached
}

func (tb *TermBuffer) Read(input util.DataInput, fieldInfos *FieldInfos) error {
	start, err := input.ReadVInt()
	if err != nil {
		return err
	}
	length, err := input.ReadVInt()
	if err != nil {
		return err
	}
	if start < 0 || int(start) > len(tb.text) || length < 0 {
		return fmt.Errorf("corrupt term entry: prefix=%v suffix=%v (previous length %v)",
			start, length, len(tb.text))
	}
	tb.term = nil
	tb.text = append(tb.text[:start], make([]byte, length)...)
	if err = input.ReadBytes(tb.text[start:]); err != nil {
		return err
	}
	number, err := input.ReadVInt()
	if err != nil {
		return err
	}
	tb.field = fieldInfos.FieldName(number)
	tb.valid = true
	return nil
}

func (tb *TermBuffer) Set(term *Term) {
	if term == nil {
		tb.Reset()
		return
	}
	tb.text = append(tb.text[:0], term.Text...)
	tb.field = term.Field
	tb.valid = true
	tb.term = term
}

func (tb *TermBuffer) SetFrom(other *TermBuffer) {
	tb.text = append(tb.text[:0], other.text...)
	tb.field = other.field
	tb.valid = other.valid
	tb.term = other.term
}

func (tb *TermBuffer) Reset() {
	tb.field = ""
	tb.text = tb.text[:0]
	tb.valid = false
	tb.term = nil
}

func (tb *TermBuffer) CompareTo(other *TermBuffer) int {
	if tb.field == other.field {
		return strings.Compare(string(tb.text), string(other.text))
	}
	return strings.Compare(tb.field, other.field)
}

// Returns the buffered term, or nil after Reset.
func (tb *TermBuffer) ToTerm() *Term {
	if !tb.valid {
		return nil
	}
	if tb.term == nil {
		tb.term = &Term{tb.field, string(tb.text)}
	}
	return tb.term
}

// index/TermInfo.java

// A TermInfo is the record of information stored for a term.
type TermInfo struct {
	// The number of documents which contain the term.
	DocFreq     int32
	FreqPointer int64
	ProxPointer int64
	SkipOffset  int32
}

func (ti *TermInfo) Set(other *TermInfo) {
	*ti = *other
}

func (ti *TermInfo) String() string {
	return fmt.Sprintf("TermInfo(df=%v, freq=%v, prox=%v, skip=%v)",
		ti.DocFreq, ti.FreqPointer, ti.ProxPointer, ti.SkipOffset)
}
