package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Auther verifies local credentials and issues sessions. It is also the
// registration entry point; token issuance never mutates the store.
type Auther struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokens TokenService) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Login verifies the submitted password against the stored hash and, on
// success, issues a fresh token pair. Nothing is persisted.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Info("login for unknown email", "email", email)
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.IsFederatedOnly() {
		s.logger.Info("password login against federated-only account", "email", email)
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return s.IssueSession(user)
}

// IssueSession mints both token classes for the user. Every login path,
// password or federated, converges here.
func (s *Auther) IssueSession(user *User) (*TokenPair, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	access, err := s.tokens.MintAccessToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.MintRefreshToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// RegisterUserMessage carries a registration request.
type RegisterUserMessage struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register hashes the password and creates the user record. The store's
// unique email index arbitrates concurrent duplicate registrations.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(msg.Password)
		if err != nil {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return errors.Wrap(richErr, errors.CategoryValidation, "invalid password provided")
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}

		user.FullName = msg.FullName
		user.Email = msg.Email
		user.Phone = msg.Phone
		user.PasswordHash = hash

		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, errors.Wrap(err, errors.CategoryInternal, "user registration transaction failed")
	}

	return user, nil
}
