package common

// Coalesce returns the first value that is not the zero value of T, or the zero value when every
// value is zero. Used for layered settings such as config value, then environment, then default.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
