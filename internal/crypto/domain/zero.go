package domain

// Zero securely overwrites a byte slice with zeros to clear sensitive data from memory.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// WithSecret allocates a buffer of the given size, passes it to fn and zeroes it
// once fn returns, whether fn succeeded or not.
func WithSecret(size int, fn func(buf []byte) error) error {
	buf := make([]byte, size)
	defer Zero(buf)
	return fn(buf)
}
