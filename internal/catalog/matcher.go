package catalog

import (
	"strings"
	"unicode"
)

// tokenExpansions spells out the abbreviations SanMar uses inside color names
// ("Smk Gry/Chrome", "AtlBlue/Chrome").
var tokenExpansions = map[string]string{
	"smk":  "smoke",
	"gry":  "grey",
	"gray": "grey",
	"atl":  "atlantic",
	"hthr": "heather",
	"htr":  "heather",
	"blk":  "black",
	"nvy":  "navy",
	"wht":  "white",
	"lt":   "light",
	"dk":   "dark",
	"dp":   "deep",
	"roy":  "royal",
	"chrc": "charcoal",
	"grn":  "green",
	"org":  "orange",
	"brn":  "brown",
	"prp":  "purple",
	"mar":  "maroon",
	"ath":  "athletic",
	"sfty": "safety",
	"irn":  "iron",
}

// DefaultColorAliases are color names SanMar services spell differently for the
// same dye. Each pair matches in both directions.
var DefaultColorAliases = [][2]string{
	{"Black", "Jet Black"},
	{"Navy", "Deep Navy"},
	{"Navy", "True Navy"},
	{"Royal", "True Royal"},
	{"Red", "True Red"},
	{"White", "Bright White"},
	{"Kelly", "Kelly Green"},
	{"Forest", "Forest Green"},
	{"Grey", "Heather Grey"},
	{"Athletic Heather", "Sport Grey"},
	{"Charcoal", "Dark Heather"},
}

// ColorMatcher reconciles color spellings across SanMar services: case,
// slash/space separators, abbreviations and a fixed alias table.
type ColorMatcher struct {
	aliases map[string]map[string]bool
}

func NewColorMatcher(pairs [][2]string) *ColorMatcher {
	m := &ColorMatcher{aliases: make(map[string]map[string]bool)}
	for _, p := range pairs {
		a, b := m.Canonical(p[0]), m.Canonical(p[1])
		m.link(a, b)
		m.link(b, a)
	}
	return m
}

func DefaultColorMatcher() *ColorMatcher {
	return NewColorMatcher(DefaultColorAliases)
}

func (m *ColorMatcher) link(from, to string) {
	set, ok := m.aliases[from]
	if !ok {
		set = make(map[string]bool)
		m.aliases[from] = set
	}
	set[to] = true
}

// Canonical reduces a color name to lower-case expanded tokens with separators removed,
// so "Smk Gry/Chrome", "Smoke Grey / Chrome" and "smoke grey chrome" compare equal.
func (m *ColorMatcher) Canonical(color string) string {
	var b strings.Builder
	for _, tok := range splitColorTokens(color) {
		if exp, ok := tokenExpansions[tok]; ok {
			tok = exp
		}
		b.WriteString(tok)
	}
	return b.String()
}

// Equivalent reports whether a and b name the same color.
func (m *ColorMatcher) Equivalent(a, b string) bool {
	ca, cb := m.Canonical(a), m.Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	return ca == cb || m.aliases[ca][cb]
}

// Match picks the candidate naming target: exact match first, then canonical
// match, then alias match.
func (m *ColorMatcher) Match(target string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == target {
			return c, true
		}
	}
	ct := m.Canonical(target)
	if ct == "" {
		return "", false
	}
	for _, c := range candidates {
		if m.Canonical(c) == ct {
			return c, true
		}
	}
	for _, c := range candidates {
		if m.aliases[ct][m.Canonical(c)] {
			return c, true
		}
	}
	return "", false
}

// Variants lists the literal spellings a service might use for color.
func (m *ColorMatcher) Variants(color string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(color)
	add(strings.ToUpper(color))
	add(strings.ToLower(color))
	add(titleCase(color))
	add(strings.ReplaceAll(color, "/", " "))
	add(strings.ReplaceAll(color, " ", "/"))
	add(strings.ReplaceAll(strings.ReplaceAll(color, " / ", "/"), "/ ", "/"))
	add(strings.ReplaceAll(color, " ", ""))
	return out
}

// splitColorTokens lower-cases color and splits it on non-alphanumerics and
// lower→upper case changes ("AtlBlue" → atl, blue).
func splitColorTokens(color string) []string {
	var (
		tokens []string
		cur    []rune
		prev   rune
	)
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range color {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return tokens
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
