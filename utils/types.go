package utils

import "strings"

func ToPointer[T any](value T) *T {
	return &value
}

// FromPointer returns the value p points to, or the zero value for nil.
func FromPointer[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonEmpty returns a pointer to s, or nil when s is blank.
func NonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
