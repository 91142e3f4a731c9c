package analysis

// A Token is an occurrence of a term from the text of a field. It
// consists of a term's text, the start and end byte offset of the term
// in the text of the field, and the distance from the previous token.
type Token struct {
	Text              string
	Start             int
	End               int
	PositionIncrement int
}

func NewToken(text string, start, end int) Token {
	return Token{text, start, end, 1}
}

/*
A TokenStream enumerates the sequence of tokens, either from fields
of a document or from query text.

Next returns false once the stream is exhausted. Callers must Close
the stream when they are done with it.
*/
type TokenStream interface {
	Next() (tok Token, ok bool, err error)
	Close() error
}

// A TokenFilter is a TokenStream whose input is another TokenStream.
type TokenFilter struct {
	input TokenStream
}

func (f *TokenFilter) Close() error {
	return f.input.Close()
}

// Keeps tokens accepted by a predicate. Position increments of
// dropped tokens are carried onto the next kept token.
type predicateFilter struct {
	*TokenFilter
	accept func(string) bool
}

func (f *predicateFilter) Next() (Token, bool, error) {
	skipped := 0
	for {
		tok, ok, err := f.input.Next()
		if err != nil || !ok {
			return tok, ok, err
		}
		if f.accept(tok.Text) {
			tok.PositionIncrement += skipped
			return tok, true, nil
		}
		skipped += tok.PositionIncrement
	}
}

// Removes the given stop words from the stream.
func NewStopFilter(input TokenStream, stopWords map[string]bool) TokenStream {
	return &predicateFilter{&TokenFilter{input}, func(s string) bool {
		return !stopWords[s]
	}}
}

type mapFilter struct {
	*TokenFilter
	fn func(string) string
}

func (f *mapFilter) Next() (Token, bool, error) {
	tok, ok, err := f.input.Next()
	if ok {
		tok.Text = f.fn(tok.Text)
	}
	return tok, ok, err
}

// Rewrites the text of every token with fn, leaving offsets untouched.
func NewMapFilter(input TokenStream, fn func(string) string) TokenStream {
	return &mapFilter{&TokenFilter{input}, fn}
}

// Collects the text of every token in ts, closing it afterwards.
func Terms(ts TokenStream) (ans []string, err error) {
	defer func() {
		if cerr := ts.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		tok, ok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return ans, nil
		}
		ans = append(ans, tok.Text)
	}
}
