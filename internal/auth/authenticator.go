// Package auth registers users, checks their passwords and issues the
// session tokens that scope every invoice operation to its owner.
package auth

import (
	"context"

	"github.com/mmynk/invoicer/internal/models"
)

// Authenticator turns sign-up and login credentials into invoice owners.
// AuthService only talks to this interface; PasswordAuthenticator is the
// one implementation.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// Returns ErrEmailExists if the email is already registered.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns ErrInvalidCredentials if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials too weak to register with.
	ValidateCredential(credential string) error
}
