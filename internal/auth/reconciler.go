package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/tallyapp/tally/internal/auth/social"
)

// Reconciler maps a federated identity profile to a local user record,
// creating one on first sight. No password is involved; the resulting
// record is federated-only until the user registers one.
type Reconciler struct {
	repo   RepositoryManager
	issuer SessionIssuer
	logger Logger
}

// NewReconciler returns a Reconciler backed by the given store and the
// shared session issuer.
func NewReconciler(repo RepositoryManager, issuer SessionIssuer) *Reconciler {
	return &Reconciler{
		repo:   repo,
		issuer: issuer,
		logger: defLogger{},
	}
}

func (r *Reconciler) WithLogger(logger Logger) *Reconciler {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Reconcile resolves the profile to a user record and issues a session.
// Repeated calls for the same external identity attach to the same
// record: the lookup is keyed on email and the id derives from it, so
// even a racy first sight converges on one user.
func (r *Reconciler) Reconcile(ctx context.Context, profile *social.Profile) (*TokenPair, *User, error) {
	if profile == nil {
		return nil, nil, ErrMissingProfileEmail
	}

	email, ok := profile.PrimaryEmail()
	if !ok {
		r.logger.Warn("federated profile without verified email", "provider", profile.Provider)
		return nil, nil, ErrMissingProfileEmail
	}

	record := &User{
		FullName: profile.DisplayName,
		Email:    email,
	}

	if id, err := hashid.NewUUID(email); err == nil {
		record.ID = id
	}

	user, err := r.repo.Users().GetOrCreate(ctx, record)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to reconcile federated identity")
	}

	pair, err := r.issuer.IssueSession(user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}
