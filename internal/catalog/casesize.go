package catalog

import "strings"

// DefaultCaseSize is used for styles with no specific rule.
const DefaultCaseSize = 24

// OneSizeCaseSize applies to caps and other one-size products.
const OneSizeCaseSize = 144

// CaseSizeFor estimates units per case when SanMar does not report one.
func CaseSizeFor(style, size string) int {
	style = strings.ToUpper(strings.TrimSpace(style))
	size = NormalizeSize(strings.ToUpper(strings.TrimSpace(size)))

	switch {
	case strings.HasPrefix(style, "PC61"):
		if IsExtendedSize(size) {
			return 36
		}
		return 72
	case strings.HasPrefix(style, "J790"):
		if IsExtendedSize(size) && size != "2XL" {
			return 12
		}
		return 24
	case style == "C112":
		return OneSizeCaseSize
	case IsOneSize(size):
		return OneSizeCaseSize
	}
	return DefaultCaseSize
}

// EstimateCaseSize guesses a case size from the ratio of piece to case price.
// Extended sizes and styles whose case discount exceeds 20% ship 36 per case.
func EstimateCaseSize(size string, piecePrice, casePrice float64) int {
	if IsExtendedSize(size) {
		return 36
	}
	if casePrice > 0 && piecePrice/casePrice > 1.2 {
		return 36
	}
	return 72
}
