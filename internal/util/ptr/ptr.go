// Package ptr provides helper functions for creating pointers to values.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

// To returns a pointer to any value.
func To[T any](v T) *T { return &v }

// Deref returns the pointed-to value, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
