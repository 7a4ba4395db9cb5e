package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldDiacritics decomposes s and drops every combining mark, so "ü" becomes
// "u" and "Ñ" becomes "N". Characters without a canonical decomposition are
// left alone.
func FoldDiacritics(s string) string {
	// transform.Chain keeps state between calls, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeColumnName derives the canonical identifier for a raw header.
//
// The result only contains A-Z, 0-9 and '_'. The function is total and
// idempotent: NormalizeColumnName(NormalizeColumnName(x)) == NormalizeColumnName(x).
//
//	NormalizeColumnName("Descripción\nPLU ")  // "DESCRIPCION_PLU"
//	NormalizeColumnName("Precio Venta ($)")   // "PRECIO_VENTA_"
func NormalizeColumnName(raw string) string {
	s := FoldDiacritics(raw)

	// strings.Fields splits on unicode.IsSpace, which covers \r and \n too.
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, " ", "_")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isCanonicalRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeColumns applies NormalizeColumnName to every header, keeping order.
func NormalizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = NormalizeColumnName(c)
	}
	return out
}

func isCanonicalRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
