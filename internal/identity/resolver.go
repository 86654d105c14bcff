// Package identity resolves a request's credentials to a participant of
// one tab. Resolution is a pure lookup: it never creates rows and has no
// side effects.
package identity

import (
	"context"
	"fmt"

	"github.com/grouptab/grouptab/internal/ledger"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

// Credentials carries at most one credential kind extracted from a
// request: an authenticated user id, or a guest magic-link token. The
// zero value is an anonymous caller.
type Credentials struct {
	UserID     string
	GuestToken string
}

// Anonymous reports whether no credential is present.
func (c Credentials) Anonymous() bool {
	return c.UserID == "" && c.GuestToken == ""
}

// Resolver maps credentials to a Participant record scoped to one tab.
type Resolver struct {
	store storage.Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the participant for the given tab and credentials.
//
// An authenticated user with no participant row fails with NotAMember
// (distinct from being unauthenticated). An unknown guest token fails
// with InvalidToken. Anonymous callers resolve to (nil, nil); whether
// that is acceptable is the operation's decision, not the resolver's.
func (r *Resolver) Resolve(ctx context.Context, tabID string, creds Credentials) (*models.Participant, error) {
	if creds.UserID != "" && creds.GuestToken != "" {
		return nil, fmt.Errorf("%w: multiple credential kinds", ledger.ErrInvalidInput)
	}

	switch {
	case creds.UserID != "":
		p, err := r.store.GetParticipantByUser(ctx, tabID, creds.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve user participant: %w", err)
		}
		if p == nil {
			return nil, ledger.ErrNotAMember
		}
		return p, nil

	case creds.GuestToken != "":
		p, err := r.store.GetParticipantByToken(ctx, tabID, creds.GuestToken)
		if err != nil {
			return nil, fmt.Errorf("resolve guest participant: %w", err)
		}
		if p == nil {
			return nil, ledger.ErrInvalidToken
		}
		return p, nil
	}

	// Anonymous viewer.
	return nil, nil
}
