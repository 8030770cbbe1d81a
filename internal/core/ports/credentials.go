package ports

// TokenService signs and verifies opaque bearer tokens carrying a subject id
// and an expiry.
type TokenService interface {
	Issue(subjectID string) (string, error)
	// Verify returns the subject id embedded in token, or an error when the
	// signature is bad or the token has expired.
	Verify(token string) (string, error)
}

// PasswordHasher is a one-way hash/compare primitive for credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) bool
}
