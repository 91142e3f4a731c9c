package analysis

import (
	"io"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

/*
An Analyzer builds TokenStreams, which analyze text. It thus
represents a policy for extracting index terms from text.
*/
type Analyzer interface {
	// Creates a TokenStream which tokenizes all the text in the provided
	// Reader.
	TokenStream(fieldName string, reader io.Reader) (TokenStream, error)
	// Position gap inserted between multiple values of the same field.
	PositionIncrementGap(fieldName string) int
}

// A tokenizer over an in-memory slice of tokens.
type sliceTokenizer struct {
	tokens []Token
	pos    int
}

func (t *sliceTokenizer) Next() (Token, bool, error) {
	if t.pos >= len(t.tokens) {
		return Token{}, false, nil
	}
	t.pos++
	return t.tokens[t.pos-1], true, nil
}

func (t *sliceTokenizer) Close() error {
	t.tokens = nil
	return nil
}

func readAll(r io.Reader) (string, error) {
	if sr, ok := r.(*strings.Reader); ok && sr.Len() == int(sr.Size()) {
		var sb strings.Builder
		_, err := sr.WriteTo(&sb)
		return sb.String(), err
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

func isWordSegment(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Splits text at Unicode word boundaries (UAX #29) and keeps segments
// containing a letter or digit. Offsets are byte offsets into text.
func NewStandardTokenizer(text string) TokenStream {
	var tokens []Token
	seg := words.FromString(text)
	offset := 0
	for seg.Next() {
		v := seg.Value()
		if isWordSegment(v) {
			tokens = append(tokens, NewToken(v, offset, offset+len(v)))
		}
		offset += len(v)
	}
	return &sliceTokenizer{tokens: tokens}
}

// Splits text at runs of white space.
func NewWhitespaceTokenizer(text string) TokenStream {
	var tokens []Token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, NewToken(text[start:i], start, i))
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, NewToken(text[start:], start, len(text)))
	}
	return &sliceTokenizer{tokens: tokens}
}

func normalizeLower(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Filters a StandardTokenizer with NFKC normalization, lower casing
// and English stop words.
type StandardAnalyzer struct {
	StopWords map[string]bool
}

func NewStandardAnalyzer() *StandardAnalyzer {
	return &StandardAnalyzer{ENGLISH_STOP_WORDS_SET}
}

func (a *StandardAnalyzer) TokenStream(fieldName string, reader io.Reader) (TokenStream, error) {
	text, err := readAll(reader)
	if err != nil {
		return nil, err
	}
	ts := NewMapFilter(NewStandardTokenizer(text), normalizeLower)
	if len(a.StopWords) > 0 {
		ts = NewStopFilter(ts, a.StopWords)
	}
	return ts, nil
}

func (a *StandardAnalyzer) PositionIncrementGap(fieldName string) int {
	return 0
}

// An Analyzer that uses NewWhitespaceTokenizer and nothing else.
type WhitespaceAnalyzer struct{}

func (a WhitespaceAnalyzer) TokenStream(fieldName string, reader io.Reader) (TokenStream, error) {
	text, err := readAll(reader)
	if err != nil {
		return nil, err
	}
	return NewWhitespaceTokenizer(text), nil
}

func (a WhitespaceAnalyzer) PositionIncrementGap(fieldName string) int {
	return 0
}
