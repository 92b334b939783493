package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d missing a string representation", k)
	}
}

func TestKindGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestKeywords(t *testing.T) {
	for lexeme, want := range Keywords {
		require.Equal(t, want.String(), lexeme)
	}
}
