package domain

// Zero overwrites key material so it does not linger in memory after use.
// Safe to call with a nil slice.
func Zero(b []byte) {
	clear(b)
}
