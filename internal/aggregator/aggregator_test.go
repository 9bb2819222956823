package aggregator

import (
	"context"
	"errors"
	"io"
	"testing"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStores struct {
	categories    []*types.Category
	organizations []*types.Organization
	profiles      []*types.Profile
	roles         []*types.UserRole
	proposals     []*types.CategoryProposal
	requests      []*types.ItemRequest
	listings      []*types.DonationListing

	listingErr error
}

func (f *fakeStores) AllCategories(context.Context) ([]*types.Category, error) {
	return f.categories, nil
}

func (f *fakeStores) AllOrganizations(context.Context) ([]*types.Organization, error) {
	return f.organizations, nil
}

func (f *fakeStores) AllProfiles(context.Context) ([]*types.Profile, error) {
	return f.profiles, nil
}

func (f *fakeStores) AllRoles(context.Context) ([]*types.UserRole, error) {
	return f.roles, nil
}

func (f *fakeStores) AllProposals(context.Context) ([]*types.CategoryProposal, error) {
	return f.proposals, nil
}

func (f *fakeStores) AllRequests(context.Context) ([]*types.ItemRequest, error) {
	return f.requests, nil
}

func (f *fakeStores) AllListings(context.Context) ([]*types.DonationListing, error) {
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	return f.listings, nil
}

func newAggregator(f *fakeStores) *Aggregator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, f, f, f, f, f, f, f)
}

func TestRefreshMergesUsersAndRoles(t *testing.T) {
	f := &fakeStores{
		profiles: []*types.Profile{
			{ID: "u1", Email: "donor@example.sg"},
			{ID: "u2", Email: "orphan@example.sg"}, // no role record
		},
		roles: []*types.UserRole{{UserID: "u1", Role: types.RoleUser}},
	}

	a := newAggregator(f)
	a.Refresh(context.Background())

	snap := a.Snapshot()
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "u1", snap.Users[0].ID)
	assert.Equal(t, types.RoleUser, snap.Users[0].Role)
}

func TestRefreshMaterializesProposalOrganizationNames(t *testing.T) {
	f := &fakeStores{
		organizations: []*types.Organization{{ID: "o1", Name: "Helping Hands"}},
		proposals: []*types.CategoryProposal{
			{ID: "p1", OrganizationID: "o1", Category: "Medical"},
			{ID: "p2", OrganizationID: "gone", Category: "Toys"},
		},
	}

	a := newAggregator(f)
	a.Refresh(context.Background())

	snap := a.Snapshot()
	require.Len(t, snap.Proposals, 2)
	assert.Equal(t, "Helping Hands", snap.Proposals[0].OrganizationName)
	assert.Empty(t, snap.Proposals[1].OrganizationName)
}

func TestRefreshKeepsStaleCollectionOnReadFailure(t *testing.T) {
	f := &fakeStores{
		listings: []*types.DonationListing{{ID: "l1", Title: "Sofa"}},
	}

	a := newAggregator(f)
	a.Refresh(context.Background())
	require.Len(t, a.Snapshot().Listings, 1)

	// The next refresh fails for listings only; the previous value stays.
	f.listingErr = errors.New("connection reset")
	f.categories = []*types.Category{{ID: "c1", Name: "Furniture"}}
	a.Refresh(context.Background())

	snap := a.Snapshot()
	assert.Len(t, snap.Listings, 1, "failed collection keeps previous value")
	assert.Len(t, snap.Categories, 1, "healthy collections still refresh")
}

func TestDoRefetchesAfterSuccessfulWrite(t *testing.T) {
	f := &fakeStores{}
	a := newAggregator(f)

	result := a.Do(context.Background(), func(context.Context) error {
		// Simulate the backend write landing before the refetch.
		f.listings = append(f.listings, &types.DonationListing{
			ID:        "l1",
			Title:     "Study desk",
			Category:  "Furniture",
			Condition: types.ConditionGood,
			Images:    []string{"listings/l1/front.jpg"},
			Status:    types.ListingStatusAvailable,
		})
		return nil
	})

	require.True(t, result.Success)

	snap := a.Snapshot()
	require.Len(t, snap.Listings, 1)
	created := snap.Listings[0]
	assert.Equal(t, "Study desk", created.Title)
	assert.Equal(t, "Furniture", created.Category)
	assert.Equal(t, types.ConditionGood, created.Condition)
	assert.Equal(t, []string{"listings/l1/front.jpg"}, created.Images)
	assert.Equal(t, types.ListingStatusAvailable, created.Status)
}

func TestDoReportsWriteFailureWithoutRefetch(t *testing.T) {
	f := &fakeStores{}
	a := newAggregator(f)

	before := a.Snapshot().FetchedAt

	result := a.Do(context.Background(), func(context.Context) error {
		return errors.New("unique constraint violation")
	})

	assert.False(t, result.Success)
	assert.Equal(t, "unique constraint violation", result.Error)
	assert.Equal(t, before, a.Snapshot().FetchedAt, "failed write must not refetch")
}

func TestSnapshotFetchedAtAdvances(t *testing.T) {
	a := newAggregator(&fakeStores{
		profiles: []*types.Profile{{ID: "u1", VerificationDocument: utils.StringPtr("docs/u1.pdf")}},
		roles:    []*types.UserRole{{UserID: "u1", Role: types.RoleBeneficiary}},
	})

	assert.True(t, a.Snapshot().FetchedAt.IsZero())
	a.Refresh(context.Background())
	assert.False(t, a.Snapshot().FetchedAt.IsZero())
}
