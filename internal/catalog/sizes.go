package catalog

import (
	"sort"
	"strings"
)

var sizeAliases = map[string]string{
	"XXL":     "2XL",
	"XXXL":    "3XL",
	"XXXXL":   "4XL",
	"XXXXXL":  "5XL",
	"XXXXXXL": "6XL",
	"SM":      "S",
	"MED":     "M",
	"LG":      "L",
	"XLG":     "XL",
	"1X":      "XL",
	"2X":      "2XL",
	"3X":      "3XL",
	"4X":      "4XL",
}

// sizeRank orders standard apparel sizes; anything unlisted sorts after them.
var sizeRank = map[string]int{
	"XXS": 0, "XS": 1, "S": 2, "M": 3, "L": 4, "XL": 5,
	"2XL": 6, "3XL": 7, "4XL": 8, "5XL": 9, "6XL": 10,
	"LT": 11, "XLT": 12, "2XLT": 13, "3XLT": 14, "4XLT": 15,
	"OSFA": 20, "OS": 21,
}

// oneSizeLabels are the spellings SanMar uses for single-size products.
var oneSizeLabels = map[string]bool{"OSFA": true, "OS": true, "ONE SIZE": true}

// NormalizeSize maps the alternate spellings SanMar returns (XXL, SM, 2X ...)
// onto the catalog notation. Unknown sizes are returned unchanged.
func NormalizeSize(size string) string {
	if mapped, ok := sizeAliases[strings.ToUpper(strings.TrimSpace(size))]; ok {
		return mapped
	}
	return size
}

// IsOneSize reports whether size is a one-size-fits-all label.
func IsOneSize(size string) bool {
	return oneSizeLabels[strings.ToUpper(strings.TrimSpace(size))]
}

// IsExtendedSize reports whether size is 2XL or larger (including tall 2XLT+).
func IsExtendedSize(size string) bool {
	r, ok := sizeRank[NormalizeSize(strings.ToUpper(strings.TrimSpace(size)))]
	return ok && (r >= sizeRank["2XL"] && r <= sizeRank["6XL"] || r >= sizeRank["2XLT"] && r <= sizeRank["4XLT"])
}

// SortSizes sorts sizes in place: standard order first, then unknown sizes in input order.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		ri, iok := sizeRank[strings.ToUpper(sizes[i])]
		rj, jok := sizeRank[strings.ToUpper(sizes[j])]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		default:
			return false
		}
	})
}

// ParseSizeList splits SanMar's "S, M, L, XL" availableSizes field and normalizes each entry.
func ParseSizeList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		s := NormalizeSize(strings.TrimSpace(part))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
