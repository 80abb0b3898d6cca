package catalog

import "strings"

// colorCodes maps SanMar abbreviated color codes (as found in part ids and
// inventory feeds) to display names.
var colorCodes = map[string]string{
	"BLK":     "Black",
	"BK":      "Black",
	"JETBLK":  "Jet Black",
	"NVY":     "Navy",
	"NV":      "Navy",
	"TRNVY":   "True Navy",
	"WHT":     "White",
	"WH":      "White",
	"RED":     "Red",
	"RD":      "Red",
	"TRRED":   "True Red",
	"ROY":     "Royal",
	"TRROY":   "True Royal",
	"GRY":     "Grey",
	"GR":      "Gray",
	"ATHHTHR": "Athletic Heather",
	"DKHTHR":  "Dark Heather",
	"SPTGRY":  "Sport Grey",
	"STLGRY":  "Steel Grey",
	"CHAR":    "Charcoal",
	"KH":      "Khaki",
	"FORGRN":  "Forest Green",
	"KLYGRN":  "Kelly Green",
	"DKGRN":   "Dark Green",
	"MAR":     "Maroon",
	"PRP":     "Purple",
	"ORG":     "Orange",
	"GLD":     "Gold",
	"LTBL":    "Light Blue",
	"PNK":     "Pink",
	"NAT":     "Natural",
}

// MapColor maps an abbreviated SanMar color code to its display name.
// Unknown inputs are returned unchanged.
func MapColor(code string) string {
	if name, ok := colorCodes[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

var colorHex = map[string]string{
	"black":            "#000000",
	"jet black":        "#0a0a0a",
	"navy":             "#000080",
	"navy blue":        "#000080",
	"true navy":        "#000080",
	"deep navy":        "#0b1a3a",
	"white":            "#ffffff",
	"red":              "#ff0000",
	"true red":         "#ff0000",
	"royal":            "#4169e1",
	"true royal":       "#4169e1",
	"royal blue":       "#4169e1",
	"athletic heather": "#d3d3d3",
	"sport grey":       "#c0c0c0",
	"dark heather":     "#606060",
	"grey":             "#808080",
	"gray":             "#808080",
	"light grey":       "#d3d3d3",
	"steel grey":       "#71797e",
	"ash":              "#e6e6e6",
	"purple":           "#800080",
	"green":            "#008000",
	"forest green":     "#228b22",
	"kelly green":      "#4cbb17",
	"dark green":       "#013220",
	"yellow":           "#ffff00",
	"gold":             "#ffd700",
	"orange":           "#ffa500",
	"maroon":           "#800000",
	"brown":            "#8b4513",
	"pink":             "#ffc0cb",
	"hot pink":         "#ff69b4",
	"natural":          "#f5f5dc",
	"charcoal":         "#36454f",
	"khaki":            "#c3b091",
	"olive":            "#708238",
	"silver":           "#c0c0c0",
}

// ColorHex returns a swatch hex for a display color. Two-tone colors ("Black/White")
// use their first component.
func ColorHex(color string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(color))
	if hex, ok := colorHex[key]; ok {
		return hex, true
	}
	if i := strings.IndexByte(key, '/'); i > 0 {
		hex, ok := colorHex[strings.TrimSpace(key[:i])]
		return hex, ok
	}
	return "", false
}

// ColorHexTable exposes the swatch table to templates.
func ColorHexTable() map[string]string {
	out := make(map[string]string, len(colorHex))
	for k, v := range colorHex {
		out[k] = v
	}
	return out
}
