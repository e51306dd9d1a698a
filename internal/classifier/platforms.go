package classifier

import (
	"strings"
	"unicode"
)

// Canonical platform and field codes.
const (
	PlatformG1        = "G1"
	PlatformG2        = "G2"
	PlatformG12       = "G12"
	PlatformArthit    = "Arthit"
	PlatformC5        = "C5"
	PlatformG448      = "G4/48"
	PlatformB832      = "B8/32"
	PlatformBenchamas = "Benchamas"
	PlatformPailin    = "Pailin"
)

var primarySupplyGroup = []string{PlatformG1, PlatformG2, PlatformG12}

var fieldPurchaseGroup = []string{PlatformC5, PlatformG448}

var singlePlatformGroup = []string{PlatformB832, PlatformBenchamas, PlatformPailin}

// platformAliases is keyed by the squashed form produced by squash.
var platformAliases = map[string]string{
	"g1":        PlatformG1,
	"g2":        PlatformG2,
	"g12":       PlatformG12,
	"arthit":    PlatformArthit,
	"arthitgas": PlatformArthit,
	"c5":        PlatformC5,
	"g448":      PlatformG448,
	"g4":        PlatformG448,
	"b832":      PlatformB832,
	"b8":        PlatformB832,
	"benchamas": PlatformBenchamas,
	"เบญจมาศ":   PlatformBenchamas,
	"pailin":    PlatformPailin,
	"ไพลิน":     PlatformPailin,
}

// squash lowercases s and drops everything but letters and digits, so that
// "G4/48", "G4-48" and "g4 48" compare equal.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Thai, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalPlatform maps a platform name as found in a document onto its canonical code.
// Unrecognized names are returned trimmed and reported as not recognized.
func CanonicalPlatform(name string) (string, bool) {
	if c, ok := platformAliases[squash(name)]; ok {
		return c, true
	}
	return strings.TrimSpace(name), false
}

// canonicalPlatforms canonicalizes and de-duplicates names, keeping first-appearance order.
func canonicalPlatforms(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		c, _ := CanonicalPlatform(n)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// distinctVendors counts vendor names case- and punctuation-insensitively.
func distinctVendors(names []string) int {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if k := squash(n); k != "" {
			seen[k] = true
		}
	}
	return len(seen)
}
