package utils

import (
	"fmt"
	"time"
)

// ToPointer returns a pointer to the given value.
func ToPointer[T any](v T) *T {
	return &v
}

// FormatNumber formats a number with the given number of decimals.
func FormatNumber(num float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, num)
}

// FormatVolume formats large volumes with K/M/B suffixes.
func FormatVolume(num float64) string {
	switch {
	case num >= 1e9:
		return fmt.Sprintf("%.2fB", num/1e9)
	case num >= 1e6:
		return fmt.Sprintf("%.2fM", num/1e6)
	case num >= 1e3:
		return fmt.Sprintf("%.2fK", num/1e3)
	default:
		return fmt.Sprintf("%.2f", num)
	}
}

// FormatDuration renders a trade duration as "Nm" or "NhMm".
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
