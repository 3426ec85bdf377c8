package service

// Claims is the payload embedded in an access token.
type Claims struct {
	Subject string // User ID as a string.
	Email   string
}

// TokenService defines the interface for issuing and validating bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue signs the claims into an opaque bearer token.
	Issue(claims Claims) (string, error)

	// Validate verifies the token signature and expiry and returns its claims.
	Validate(token string) (*Claims, error)
}
