package domain

// IsValidID reports whether s is a well-formed document identifier: exactly
// 24 lowercase-or-uppercase hex characters. The check lives here, on the
// string form, so the core packages stay free of driver imports.
func IsValidID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
