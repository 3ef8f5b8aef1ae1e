package util

import (
	"math"
)

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}

// PtrIfNotZero returns nil for the zero value of T
func PtrIfNotZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Round Method to round to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}
