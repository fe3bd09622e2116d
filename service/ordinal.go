package service

import "fmt"

// OrdinalSuffix returns the English suffix for a positive rank
func OrdinalSuffix(rank int64) string {
	if mod := rank % 100; mod >= 10 && mod <= 20 {
		return "th"
	}
	switch rank % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// Ordinal formats a rank with its suffix, e.g. 22 -> "22nd"
func Ordinal(rank int64) string {
	return fmt.Sprintf("%d%s", rank, OrdinalSuffix(rank))
}
