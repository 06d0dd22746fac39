package common

// WipeByteArray overwrites b with zeros. Used to drop plaintext passwords
// from memory once they have been hashed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ClampPage normalises pagination parameters taken from a request.
// Non-positive limits fall back to DefaultPageLimit, limits above
// MaxPageLimit are capped, negative offsets become zero.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = DefaultPageOffset
	}
	return limit, offset
}
