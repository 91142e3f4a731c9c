package index

import (
	"strings"
)

// index/TermEnum.java

/*
Abstract class for enumerating terms.

Term enumerations are always ordered by Term.CompareTo(). Each term in
the enumeration is greater than all that precede it.

An enum returned by IndexReader.Terms() is positioned before the
first term and Next() must be called first. One returned by
IndexReader.TermsFrom(t) is already positioned on the first term
greater than or equal to t, if any.
*/
type TermEnum interface {
	// Increments the enumeration to the next element. True if one exists.
	Next() (bool, error)
	// Returns the current Term in the enumeration, or nil.
	Term() *Term
	// Returns the docFreq of the current Term in the enumeration.
	DocFreq() int
	Close() error
}

// index/TermDocs.java

/*
TermDocs provides an interface for enumerating <document, frequency>
pairs for a term.

The document portion names each document containing the term.
Documents are indicated by number. The frequency portion gives the
number of times the term occurred in each document.

The pairs are ordered by document number. Exhaustion is reported by
Next() or SkipTo() returning false.
*/
type TermDocs interface {
	// Sets this to the data for a term.
	Seek(term *Term) error
	// Sets this to the data for the current term in a TermEnum.
	SeekEnum(termEnum TermEnum) error
	// Returns the current document number. Only valid after Next() or
	// SkipTo() returned true.
	Doc() int
	// Returns the frequency of the term within the current document.
	Freq() int
	// Moves to the next pair in the enumeration.
	Next() (bool, error)
	/*
		Attempts to read multiple entries from the enumeration, up to
		length of docs. Document numbers are stored in docs, and term
		frequencies are stored in freqs. Returns the number of entries
		read. Zero is only returned when the stream has been exhausted.
	*/
	Read(docs, freqs []int) (int, error)
	/*
		Skips entries to the first beyond the current whose document
		number is greater than or equal to target. Returns true iff there
		is such an entry. Targets must not decrease.
	*/
	SkipTo(target int) (bool, error)
	Close() error
}

// index/TermPositions.java

/*
TermPositions provides an interface for enumerating the <document,
frequency, <position>*> tuples for a term. The document and frequency
are the same as for a TermDocs. The positions portion lists the
ordinal positions of each occurrence of a term in a document.
*/
type TermPositions interface {
	TermDocs
	// Returns next position in the current document. It is an error to
	// call this more than Freq() times without calling Next().
	NextPosition() (int, error)
}

// index/FilteredTermEnum.java

/*
Adapts a TermEnum to only return terms accepted by a predicate. The
enumeration stops at the first term for which end returns true. The
filtered enum is positioned on its first accepted term on creation.
*/
type FilteredTermEnum struct {
	actual      TermEnum
	accept      func(*Term) bool
	end         func(*Term) bool
	currentTerm *Term
}

func NewFilteredTermEnum(actual TermEnum, accept, end func(*Term) bool) (*FilteredTermEnum, error) {
	e := &FilteredTermEnum{actual: actual, accept: accept, end: end}
	if t := actual.Term(); t != nil && !end(t) && accept(t) {
		e.currentTerm = t
		return e, nil
	}
	if _, err := e.Next(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *FilteredTermEnum) Next() (bool, error) {
	e.currentTerm = nil
	for {
		ok, err := e.actual.Next()
		if err != nil || !ok {
			return false, err
		}
		t := e.actual.Term()
		if e.end(t) {
			return false, nil
		}
		if e.accept(t) {
			e.currentTerm = t
			return true, nil
		}
	}
}

func (e *FilteredTermEnum) Term() *Term {
	return e.currentTerm
}

func (e *FilteredTermEnum) DocFreq() int {
	if e.currentTerm == nil {
		return -1
	}
	return e.actual.DocFreq()
}

func (e *FilteredTermEnum) Close() error {
	e.currentTerm = nil
	return e.actual.Close()
}

// Enumerates all terms of prefix.Field whose text starts with
// prefix.Text.
func NewPrefixTermEnum(reader IndexReader, prefix *Term) (*FilteredTermEnum, error) {
	actual, err := reader.TermsFrom(prefix)
	if err != nil {
		return nil, err
	}
	return NewFilteredTermEnum(actual,
		func(t *Term) bool { return true },
		func(t *Term) bool {
			return t.Field != prefix.Field || !strings.HasPrefix(t.Text, prefix.Text)
		})
}

const (
	WILDCARD_STRING = '*'
	WILDCARD_CHAR   = '?'
)

/*
Enumerates all terms of pattern.Field matching the wildcard pattern
in pattern.Text: '*' matches any sequence of characters and '?' any
single character. The enumeration starts at the literal prefix
preceding the first wildcard.
*/
func NewWildcardTermEnum(reader IndexReader, pattern *Term) (*FilteredTermEnum, error) {
	pre := pattern.Text
	if i := strings.IndexAny(pre, "*?"); i >= 0 {
		pre = pre[:i]
	}
	actual, err := reader.TermsFrom(&Term{pattern.Field, pre})
	if err != nil {
		return nil, err
	}
	pat := []rune(pattern.Text[len(pre):])
	return NewFilteredTermEnum(actual,
		func(t *Term) bool {
			return WildcardEquals(pat, []rune(t.Text[len(pre):]))
		},
		func(t *Term) bool {
			return t.Field != pattern.Field || !strings.HasPrefix(t.Text, pre)
		})
}

// Reports whether s matches the wildcard pattern.
func WildcardEquals(pattern, s []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case WILDCARD_STRING:
			for len(pattern) > 0 && pattern[0] == WILDCARD_STRING {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if WildcardEquals(pattern, s[i:]) {
					return true
				}
			}
			return false
		case WILDCARD_CHAR:
			if len(s) == 0 {
				return false
			}
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
		}
		pattern, s = pattern[1:], s[1:]
	}
	return len(s) == 0
}
