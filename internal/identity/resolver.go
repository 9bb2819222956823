// Package identity turns an authenticated subject into the application's
// "current user" view. A user counts as logged in only once both the
// profile and the role record have loaded; authentication alone is not
// enough.
package identity

import (
	"context"
	"errors"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
)

type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateReady           SessionState = "ready"

	// StateError marks an infrastructure failure while loading the profile
	// or role. Consumers must treat it exactly like unauthenticated; it
	// exists so the failure is visible instead of folded into a null check.
	StateError SessionState = "error"
)

// Session is the resolved view handed to the rest of the application.
// Organization is populated only when the role is organization.
type Session struct {
	State        SessionState        `json:"state"`
	User         *types.AccountUser  `json:"user,omitempty"`
	Organization *types.Organization `json:"organization,omitempty"`
}

type ProfileSource interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

type RoleSource interface {
	RoleByUser(ctx context.Context, userID string) (*types.UserRole, error)
}

type OrganizationSource interface {
	OrganizationByOwner(ctx context.Context, ownerID string) (*types.Organization, error)
}

type Resolver struct {
	logger   *logrus.Logger
	profiles ProfileSource
	roles    RoleSource
	orgs     OrganizationSource
}

func NewResolver(logger *logrus.Logger, profiles ProfileSource, roles RoleSource, orgs OrganizationSource) *Resolver {
	return &Resolver{
		logger:   logger,
		profiles: profiles,
		roles:    roles,
		orgs:     orgs,
	}
}

// Resolve loads the profile and role for an authenticated subject. Missing
// records fail closed: the caller gets an unauthenticated session, not an
// error, and the cause is only logged.
func (r *Resolver) Resolve(ctx context.Context, userID string) Session {
	profile, err := r.profiles.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			return Session{State: StateUnauthenticated}
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("failed to load profile")
		return Session{State: StateError}
	}

	role, err := r.roles.RoleByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrRoleNotFound) {
			return Session{State: StateUnauthenticated}
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("failed to load role")
		return Session{State: StateError}
	}

	session := Session{
		State: StateReady,
		User: &types.AccountUser{
			Profile: *profile,
			Role:    role.Role,
		},
	}

	if role.Role == types.RoleOrganization {
		org, err := r.orgs.OrganizationByOwner(ctx, userID)
		if err != nil {
			// An organization account without its organization record is a
			// half-created signup. Fail closed here too.
			if errors.Is(err, types.ErrOrganizationNotFound) {
				return Session{State: StateUnauthenticated}
			}
			r.logger.WithError(err).WithField("user_id", userID).Error("failed to load organization")
			return Session{State: StateError}
		}
		session.Organization = org
	}

	return session
}

// CheckLoginAllowed enforces the post-authentication account gates: banned
// accounts and accounts that never cleared (or failed) verification are
// turned away with a specific reason even when credentials were correct.
func CheckLoginAllowed(profile *types.Profile, role types.Role) error {
	if profile.IsBanned {
		return types.ErrAccountBanned
	}

	// Only beneficiary and organization accounts go through approval.
	if role == types.RoleBeneficiary || role == types.RoleOrganization {
		switch profile.Status {
		case types.ProfileStatusPending:
			return types.ErrAccountPending
		case types.ProfileStatusRejected:
			return types.ErrAccountRejected
		}
	}

	return nil
}
