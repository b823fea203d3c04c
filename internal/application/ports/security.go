package ports

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// PasswordPolicy rejects weak passwords before they are hashed. The
// email is passed so the policy can reject passwords derived from it.
// Violations unwrap to errors.ErrWeakPassword.
type PasswordPolicy interface {
	Validate(password, email string) error
}
