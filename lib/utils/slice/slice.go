package slice

// Grow ensures the slice has the capacity to fit an additional n elements
// without another allocation. Length and contents are preserved.
func Grow[T any](slice []T, n int) []T {
	if cap(slice) >= len(slice)+n {
		return slice
	}
	newSlice := make([]T, len(slice), len(slice)+n)
	copy(newSlice, slice)
	return newSlice
}
