package catalog

import (
	"fmt"
	"strings"
)

const (
	swatchBaseURL = "https://cdnm.sanmar.com/swatch/gifs"
	imageBaseURL  = "https://cdni.sanmar.com/catalog/images"
)

// brandPrefixes maps style-number prefixes to SanMar's swatch file prefix.
var brandPrefixes = map[string]string{
	"PC":   "port",
	"K":    "port",
	"L":    "port",
	"J":    "port",
	"TW":   "port",
	"LW":   "port",
	"BG":   "port",
	"ST":   "sport",
	"DT":   "dist",
	"G":    "gildan",
	"CP":   "cp",
	"CS":   "cs",
	"RH":   "red",
	"NKDC": "nike",
	"OGIO": "ogio",
	"EB":   "eb",
	"NF":   "nf",
}

// BrandPrefix returns the swatch brand for style using the longest matching prefix.
// Styles with no known prefix default to "port".
func BrandPrefix(style string) string {
	style = strings.ToUpper(strings.TrimSpace(style))
	best, bestLen := "port", 0
	for prefix, brand := range brandPrefixes {
		if len(prefix) > bestLen && strings.HasPrefix(style, prefix) {
			best, bestLen = brand, len(prefix)
		}
	}
	return best
}

// SwatchURL builds the color swatch gif URL, e.g. .../port_athletic_heather.gif.
func SwatchURL(style, color string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(color)), " ", "_")
	return fmt.Sprintf("%s/%s_%s.gif", swatchBaseURL, BrandPrefix(style), slug)
}

// PlaceholderImageURL is used when SanMar returns no product image for a color.
func PlaceholderImageURL(style, color string) string {
	style = strings.ToUpper(strings.TrimSpace(style))
	if color == "" {
		return fmt.Sprintf("%s/%sp110.jpg", imageBaseURL, style)
	}
	slug := strings.NewReplacer(" ", "", "/", "").Replace(strings.ToLower(color))
	return fmt.Sprintf("%s/%sp110_%s.jpg", imageBaseURL, style, slug)
}
