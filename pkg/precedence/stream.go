package precedence

import "strings"

// TokenKind classifies a token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenInt
	TokenLetter
	TokenPunct
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "(eof)"
	case TokenInt:
		return "(integer)"
	case TokenLetter:
		return "(letter)"
	case TokenPunct:
		return "(punctuation)"
	default:
		return "(unknown)"
	}
}

// Token is a lexical token. Offset is the byte offset of Text in the source.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// EOF reports whether t marks the end of input.
func (t Token) EOF() bool {
	return t.Kind == TokenEOF
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// Stream is a cursor over a token slice.
type Stream struct {
	src      string
	tokens   []Token
	pos      int
	farthest int
}

func newStream(src string, tokens []Token) *Stream {
	if len(tokens) == 0 || !tokens[len(tokens)-1].EOF() {
		tokens = append(tokens, Token{Kind: TokenEOF, Offset: len(src)})
	}
	return &Stream{src: src, tokens: tokens}
}

// Source returns the text being parsed.
func (s *Stream) Source() string {
	return s.src
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() Token {
	return s.tokens[s.pos]
}

// Next consumes and returns the next token. At the end of input it keeps
// returning the EOF token.
func (s *Stream) Next() Token {
	tok := s.tokens[s.pos]
	if !tok.EOF() {
		s.pos++
	}
	return tok
}

// Match consumes the tokens accepted by m.
func (s *Stream) Match(m Matcher) (Token, bool) {
	n, ok := m(s.tokens, s.pos)
	if !ok {
		s.fail()
		return Token{}, false
	}
	tok := s.span(n)
	s.pos += n
	return tok, true
}

// AtEOF reports whether all input has been consumed.
func (s *Stream) AtEOF() bool {
	return s.tokens[s.pos].EOF()
}

// fail records the current position as a candidate for error reporting.
func (s *Stream) fail() {
	if s.pos > s.farthest {
		s.farthest = s.pos
	}
}

// span merges the next n tokens into one.
func (s *Stream) span(n int) Token {
	first := s.tokens[s.pos]
	if n <= 1 {
		return first
	}
	last := s.tokens[s.pos+n-1]
	return Token{
		Kind:   first.Kind,
		Text:   s.src[first.Offset:last.End()],
		Offset: first.Offset,
	}
}

func (s *Stream) syntaxError() *SyntaxError {
	at := s.farthest
	if s.pos > at {
		at = s.pos
	}
	tok := s.tokens[at]
	return &SyntaxError{Offset: tok.Offset, Found: tok}
}

// Matcher reports how many tokens starting at i form an operator.
type Matcher func(tokens []Token, i int) (n int, ok bool)

// Literal matches text case-insensitively. Text longer than one token must
// be written without gaps, so "rr" matches "rr" but not "r r".
func Literal(text string) Matcher {
	want := strings.ToLower(text)
	return func(tokens []Token, i int) (int, bool) {
		rest := want
		end := -1
		for n := 0; i+n < len(tokens); n++ {
			tok := tokens[i+n]
			if tok.EOF() || (end >= 0 && tok.Offset != end) {
				return 0, false
			}
			t := strings.ToLower(tok.Text)
			if !strings.HasPrefix(rest, t) {
				return 0, false
			}
			rest = rest[len(t):]
			end = tok.End()
			if rest == "" {
				return n + 1, true
			}
		}
		return 0, false
	}
}

// OneOf matches the first of ms that matches.
func OneOf(ms ...Matcher) Matcher {
	return func(tokens []Token, i int) (int, bool) {
		for _, m := range ms {
			if n, ok := m(tokens, i); ok {
				return n, true
			}
		}
		return 0, false
	}
}

// Not matches m only when none of the exclusions match at the same position.
// It lets a short operator give way to a longer one sharing its prefix.
func Not(m Matcher, exclude ...Matcher) Matcher {
	return func(tokens []Token, i int) (int, bool) {
		for _, x := range exclude {
			if _, ok := x(tokens, i); ok {
				return 0, false
			}
		}
		return m(tokens, i)
	}
}

// Kind matches a single token of kind k.
func Kind(k TokenKind) Matcher {
	return func(tokens []Token, i int) (int, bool) {
		if i < len(tokens) && tokens[i].Kind == k {
			return 1, true
		}
		return 0, false
	}
}
