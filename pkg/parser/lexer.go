package parser

import (
	"errors"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sandrolain/godice/pkg/precedence"
	"github.com/sandrolain/godice/pkg/types"
)

// diceLexer splits dice notation into single letters, punctuation and
// integers. Multi-character operators such as "rr" or ".+" are matched by the
// grammar over adjacent tokens, so "4d6rr1" and "4d6r r1" tokenize alike but
// parse differently.
var diceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Letter", Pattern: `[A-Za-z]`},
	{Name: "Punct", Pattern: `[-+*/%,|().;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var tokenKinds = func() map[lexer.TokenType]precedence.TokenKind {
	symbols := diceLexer.Symbols()
	return map[lexer.TokenType]precedence.TokenKind{
		symbols["Int"]:    precedence.TokenInt,
		symbols["Letter"]: precedence.TokenLetter,
		symbols["Punct"]:  precedence.TokenPunct,
	}
}()

// Tokenize converts src into grammar tokens. The returned slice always ends
// with an EOF token positioned at len(src).
func Tokenize(src string) ([]precedence.Token, error) {
	lex, err := diceLexer.LexString("", src)
	if err != nil {
		return nil, lexError(src, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, lexError(src, err)
	}

	tokens := make([]precedence.Token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		kind, ok := tokenKinds[tok.Type]
		if !ok {
			continue
		}
		tokens = append(tokens, precedence.Token{
			Kind:   kind,
			Text:   tok.Value,
			Offset: tok.Pos.Offset,
		})
	}
	return append(tokens, precedence.Token{Kind: precedence.TokenEOF, Offset: len(src)}), nil
}

func lexError(src string, err error) *types.Error {
	pos := 0
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		pos = lerr.Pos.Offset
	}
	if pos > len(src) {
		pos = len(src)
	}
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return types.Errorf(src, pos, types.ErrInvalidCharacter, "Invalid character %q", r).
		WithToken(string(r)).
		WithCause(err)
}
