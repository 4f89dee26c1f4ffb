// Package normalize turns raw history rows into clean, ordered entries and
// provides the deterministic text folding used for keyword matching
// Fold pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Fold returns the folded form of s following the pipeline above.
// Idempotent and safe for concurrent use; every keyword rule and every
// haystack goes through this exact chain so matches stay case and
// width insensitive
func Fold(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return collapseSpaces(ns)
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims.
// Titles and URLs are one line each; newlines get no special treatment here
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
