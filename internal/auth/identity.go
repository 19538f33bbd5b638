package auth

import "github.com/heartmarshall/tourops-backend/internal/domain"

// Identity is the verified content of an access token. Subject is stored
// verbatim as the actor of every decision the caller makes.
type Identity struct {
	Subject string
	Role    domain.UserRole
}
