package identity

import (
	"context"
	"errors"
	"io"
	"testing"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	profiles map[string]*types.Profile
	roles    map[string]*types.UserRole
	orgs     map[string]*types.Organization

	profileErr error
	roleErr    error
}

func (f *fakeSources) Profile(_ context.Context, id string) (*types.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, types.ErrProfileNotFound
}

func (f *fakeSources) RoleByUser(_ context.Context, id string) (*types.UserRole, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, types.ErrRoleNotFound
}

func (f *fakeSources) OrganizationByOwner(_ context.Context, id string) (*types.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, types.ErrOrganizationNotFound
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newResolver(f *fakeSources) *Resolver {
	return NewResolver(testLogger(), f, f, f)
}

func TestResolveRequiresBothProfileAndRole(t *testing.T) {
	profile := &types.Profile{ID: "u1", Email: "a@b.c", Status: types.ProfileStatusActive}

	// Profile present, role missing: still not logged in.
	f := &fakeSources{
		profiles: map[string]*types.Profile{"u1": profile},
		roles:    map[string]*types.UserRole{},
	}
	session := newResolver(f).Resolve(context.Background(), "u1")
	assert.Equal(t, StateUnauthenticated, session.State)
	assert.Nil(t, session.User)

	// Both present: ready.
	f.roles["u1"] = &types.UserRole{UserID: "u1", Role: types.RoleUser}
	session = newResolver(f).Resolve(context.Background(), "u1")
	require.Equal(t, StateReady, session.State)
	require.NotNil(t, session.User)
	assert.Equal(t, types.RoleUser, session.User.Role)
	assert.Equal(t, "a@b.c", session.User.Email)
}

func TestResolveFailsClosedOnFetchError(t *testing.T) {
	f := &fakeSources{
		profiles:   map[string]*types.Profile{},
		roles:      map[string]*types.UserRole{},
		profileErr: errors.New("connection refused"),
	}

	session := newResolver(f).Resolve(context.Background(), "u1")
	assert.Equal(t, StateError, session.State)
	assert.Nil(t, session.User)
}

func TestResolveLoadsOrganizationForOrgRole(t *testing.T) {
	f := &fakeSources{
		profiles: map[string]*types.Profile{"u1": {ID: "u1", Status: types.ProfileStatusActive}},
		roles:    map[string]*types.UserRole{"u1": {UserID: "u1", Role: types.RoleOrganization}},
		orgs:     map[string]*types.Organization{"u1": {ID: "o1", OwnerID: "u1", Name: "Helping Hands"}},
	}

	session := newResolver(f).Resolve(context.Background(), "u1")
	require.Equal(t, StateReady, session.State)
	require.NotNil(t, session.Organization)
	assert.Equal(t, "Helping Hands", session.Organization.Name)
}

func TestResolveOrgRoleWithoutOrgRecordFailsClosed(t *testing.T) {
	f := &fakeSources{
		profiles: map[string]*types.Profile{"u1": {ID: "u1"}},
		roles:    map[string]*types.UserRole{"u1": {UserID: "u1", Role: types.RoleOrganization}},
		orgs:     map[string]*types.Organization{},
	}

	session := newResolver(f).Resolve(context.Background(), "u1")
	assert.Equal(t, StateUnauthenticated, session.State)
}

func TestCheckLoginAllowedBannedBeatsEverything(t *testing.T) {
	profile := &types.Profile{Status: types.ProfileStatusActive, IsBanned: true}

	err := CheckLoginAllowed(profile, types.RoleUser)
	assert.ErrorIs(t, err, types.ErrAccountBanned)

	// Ban is independent of status.
	profile.Status = types.ProfileStatusPending
	err = CheckLoginAllowed(profile, types.RoleBeneficiary)
	assert.ErrorIs(t, err, types.ErrAccountBanned)
}

func TestCheckLoginAllowedApprovalGates(t *testing.T) {
	pending := &types.Profile{Status: types.ProfileStatusPending}
	rejected := &types.Profile{Status: types.ProfileStatusRejected}
	active := &types.Profile{Status: types.ProfileStatusActive}

	assert.ErrorIs(t, CheckLoginAllowed(pending, types.RoleBeneficiary), types.ErrAccountPending)
	assert.ErrorIs(t, CheckLoginAllowed(pending, types.RoleOrganization), types.ErrAccountPending)
	assert.ErrorIs(t, CheckLoginAllowed(rejected, types.RoleOrganization), types.ErrAccountRejected)
	assert.NoError(t, CheckLoginAllowed(active, types.RoleBeneficiary))

	// Plain donors and admins are not subject to approval.
	assert.NoError(t, CheckLoginAllowed(pending, types.RoleUser))
	assert.NoError(t, CheckLoginAllowed(pending, types.RoleAdmin))
}
