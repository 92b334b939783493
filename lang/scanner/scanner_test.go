package scanner_test

import (
	"testing"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []scanner.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("(){},.-+;*!!====<<=>>=/"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.BANG, token.BANG_EQUAL, token.EQUAL_EQUAL, token.EQUAL, token.LESS,
		token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.SLASH,
		token.EOF,
	}, kinds(toks))
}

func TestScanBrackets(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("[1, 2].x"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, []token.Kind{
		token.LBRACKET, token.NUMBER, token.COMMA, token.NUMBER,
		token.RBRACKET, token.DOT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("var x = foo and bar or nil"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQUAL, token.IDENT, token.AND,
		token.IDENT, token.OR, token.NIL, token.EOF,
	}, kinds(toks))
	require.Equal(t, "x", toks[1].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("123 4.5 0"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, 123.0, toks[0].Number)
	require.Equal(t, 4.5, toks[1].Number)
	require.Equal(t, 0.0, toks[2].Number)
}

func TestScanString(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte(`"hello world"`), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].String)
}

func TestScanUnterminatedString(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte(`"oops`), &errs)
	s.ScanAll()
	require.Error(t, errs.Err())
}

func TestScanSkipsLineComments(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("1 // a comment\n2"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, 2, toks[1].Line)
}

func TestScanTracksLineAndColumn(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("var\nx"), &errs)
	toks := s.ScanAll()
	require.NoError(t, errs.Err())
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 1, toks[0].Column)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 1, toks[1].Column)
}

func TestScanIllegalCharacter(t *testing.T) {
	var errs scanner.ErrorList
	s := scanner.New("test", []byte("@"), &errs)
	toks := s.ScanAll()
	require.Error(t, errs.Err())
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
