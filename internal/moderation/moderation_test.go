package moderation

import (
	"context"
	"io"
	"testing"

	"givelocal/internal/utils"
	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	categories map[string]*types.Category // keyed by name
	proposals  map[string]*types.CategoryProposal
	requests   map[string]*types.ItemRequest
	orgs       map[string]*types.Organization
	profiles   map[string]*types.Profile

	created       []*types.Category
	notifications []fakeNotification
}

type fakeNotification struct {
	userID  string
	kind    types.NotificationType
	title   string
	message string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		categories: map[string]*types.Category{},
		proposals:  map[string]*types.CategoryProposal{},
		requests:   map[string]*types.ItemRequest{},
		orgs:       map[string]*types.Organization{},
		profiles:   map[string]*types.Profile{},
	}
}

func (f *fakeBackend) CategoryByName(_ context.Context, name string) (*types.Category, error) {
	return f.categories[name], nil
}

func (f *fakeBackend) CreateCategory(_ context.Context, category *types.Category) error {
	category.ID = "cat-" + category.Name
	f.categories[category.Name] = category
	f.created = append(f.created, category)
	return nil
}

func (f *fakeBackend) SetSubcategories(_ context.Context, categoryID string, subs []string) error {
	for _, c := range f.categories {
		if c.ID == categoryID {
			c.Subcategories = subs
			return nil
		}
	}
	return types.ErrCategoryNotFound
}

func (f *fakeBackend) Proposal(_ context.Context, id string) (*types.CategoryProposal, error) {
	if p, ok := f.proposals[id]; ok {
		return p, nil
	}
	return nil, types.ErrProposalNotFound
}

func (f *fakeBackend) SetStatus(_ context.Context, id string, status types.ProposalStatus) error {
	f.proposals[id].Status = status
	return nil
}

func (f *fakeBackend) Request(_ context.Context, id string) (*types.ItemRequest, error) {
	if r, ok := f.requests[id]; ok {
		return r, nil
	}
	return nil, types.ErrRequestNotFound
}

func (f *fakeBackend) Create(_ context.Context, request *types.ItemRequest) error {
	request.ID = "req-" + request.Title
	f.requests[request.ID] = request
	return nil
}

func (f *fakeBackend) SetModeration(_ context.Context, id string, status types.ModerationStatus, note *string) error {
	f.requests[id].ModerationStatus = status
	f.requests[id].RejectionNote = note
	return nil
}

func (f *fakeBackend) Organization(_ context.Context, id string) (*types.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, types.ErrOrganizationNotFound
}

func (f *fakeBackend) SetStatusWithProfileCascade(_ context.Context, orgID, ownerID string, orgStatus types.OrganizationStatus, profileStatus types.ProfileStatus) error {
	f.orgs[orgID].Status = orgStatus
	f.profiles[ownerID].Status = profileStatus
	return nil
}

func (f *fakeBackend) Profile(_ context.Context, id string) (*types.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, types.ErrProfileNotFound
}

func (f *fakeBackend) SetStatus2(_ context.Context, id string, status types.ProfileStatus) error {
	f.profiles[id].Status = status
	return nil
}

func (f *fakeBackend) SetBanned(_ context.Context, id string, banned bool) error {
	f.profiles[id].IsBanned = banned
	return nil
}

func (f *fakeBackend) Notify(_ context.Context, userID string, kind types.NotificationType, title, message string, _ *string) error {
	f.notifications = append(f.notifications, fakeNotification{userID, kind, title, message})
	return nil
}

// profileStore adapts fakeBackend because the proposal SetStatus and the
// profile SetStatus collide on the method name.
type profileStore struct{ f *fakeBackend }

func (p profileStore) Profile(ctx context.Context, id string) (*types.Profile, error) {
	return p.f.Profile(ctx, id)
}

func (p profileStore) SetStatus(ctx context.Context, id string, status types.ProfileStatus) error {
	return p.f.SetStatus2(ctx, id, status)
}

func (p profileStore) SetBanned(ctx context.Context, id string, banned bool) error {
	return p.f.SetBanned(ctx, id, banned)
}

func newService(f *fakeBackend) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(logger, f, f, f, f, profileStore{f}, f)
}

func TestSubmitItemRequestAutoApprovesKnownCategory(t *testing.T) {
	f := newFakeBackend()
	f.categories["Furniture"] = &types.Category{ID: "c1", Name: "Furniture"}
	s := newService(f)

	request := &types.ItemRequest{UserID: "u1", Title: "Bed frame", Category: "Furniture", Urgency: types.UrgencyHigh}
	require.NoError(t, s.SubmitItemRequest(context.Background(), request))

	assert.Equal(t, types.ModerationStatusApproved, request.ModerationStatus)
	assert.False(t, request.IsCustomCategory)
	assert.Equal(t, types.RequestStatusActive, request.Status)
}

func TestSubmitItemRequestHoldsCustomCategory(t *testing.T) {
	f := newFakeBackend()
	s := newService(f)

	request := &types.ItemRequest{UserID: "u1", Title: "Reading lamp", Category: "Vintage Lamps"}
	require.NoError(t, s.SubmitItemRequest(context.Background(), request))

	assert.Equal(t, types.ModerationStatusPending, request.ModerationStatus)
	assert.True(t, request.IsCustomCategory)
}

func TestRejectItemRequestRequiresNote(t *testing.T) {
	f := newFakeBackend()
	f.requests["r1"] = &types.ItemRequest{ID: "r1", UserID: "u1", Title: "TV"}
	s := newService(f)

	err := s.RejectItemRequest(context.Background(), "r1", "   ")
	assert.ErrorIs(t, err, ErrRejectionNoteRequired)
	assert.NotEqual(t, types.ModerationStatusRejected, f.requests["r1"].ModerationStatus)

	require.NoError(t, s.RejectItemRequest(context.Background(), "r1", "duplicate request"))
	assert.Equal(t, types.ModerationStatusRejected, f.requests["r1"].ModerationStatus)
	require.NotNil(t, f.requests["r1"].RejectionNote)
	assert.Equal(t, "duplicate request", *f.requests["r1"].RejectionNote)
}

func TestApproveItemRequestNotifiesOwner(t *testing.T) {
	f := newFakeBackend()
	f.requests["r1"] = &types.ItemRequest{ID: "r1", UserID: "u1", Title: "Wheelchair"}
	s := newService(f)

	require.NoError(t, s.ApproveItemRequest(context.Background(), "r1"))

	assert.Equal(t, types.ModerationStatusApproved, f.requests["r1"].ModerationStatus)
	require.Len(t, f.notifications, 1)
	assert.Equal(t, "u1", f.notifications[0].userID)
	assert.Equal(t, types.NotificationTypeApproval, f.notifications[0].kind)
}

func TestApproveOrganizationCascadesProfileStatus(t *testing.T) {
	f := newFakeBackend()
	f.orgs["o1"] = &types.Organization{ID: "o1", OwnerID: "u1", Name: "Helping Hands", Status: types.OrganizationStatusPending}
	f.profiles["u1"] = &types.Profile{ID: "u1", Status: types.ProfileStatusPending}
	s := newService(f)

	require.NoError(t, s.ApproveOrganization(context.Background(), "o1"))

	assert.Equal(t, types.OrganizationStatusApproved, f.orgs["o1"].Status)
	assert.Equal(t, types.ProfileStatusActive, f.profiles["u1"].Status)
	require.Len(t, f.notifications, 1)
	assert.Equal(t, "u1", f.notifications[0].userID)
}

func TestRejectOrganizationCascadesProfileStatus(t *testing.T) {
	f := newFakeBackend()
	f.orgs["o1"] = &types.Organization{ID: "o1", OwnerID: "u1", Status: types.OrganizationStatusPending}
	f.profiles["u1"] = &types.Profile{ID: "u1", Status: types.ProfileStatusPending}
	s := newService(f)

	require.NoError(t, s.RejectOrganization(context.Background(), "o1"))

	assert.Equal(t, types.OrganizationStatusRejected, f.orgs["o1"].Status)
	assert.Equal(t, types.ProfileStatusRejected, f.profiles["u1"].Status)
}

func TestSetBannedLeavesStatusAlone(t *testing.T) {
	f := newFakeBackend()
	f.profiles["u1"] = &types.Profile{ID: "u1", Status: types.ProfileStatusActive}
	s := newService(f)

	require.NoError(t, s.SetBanned(context.Background(), "u1", true))
	assert.True(t, f.profiles["u1"].IsBanned)
	assert.Equal(t, types.ProfileStatusActive, f.profiles["u1"].Status)

	require.NoError(t, s.SetBanned(context.Background(), "u1", false))
	assert.False(t, f.profiles["u1"].IsBanned)
}

func TestApproveProposalCreatesNewCategory(t *testing.T) {
	f := newFakeBackend()
	f.orgs["o1"] = &types.Organization{ID: "o1", OwnerID: "u1"}
	f.proposals["p1"] = &types.CategoryProposal{
		ID:             "p1",
		OrganizationID: "o1",
		Category:       "Medical",
		Subcategory:    utils.StringPtr("Wheelchairs"),
		Status:         types.ProposalStatusPending,
	}
	s := newService(f)

	require.NoError(t, s.ApproveProposal(context.Background(), "p1"))

	require.NotNil(t, f.categories["Medical"])
	assert.Equal(t, []string{"Wheelchairs"}, f.categories["Medical"].Subcategories)
	assert.Equal(t, types.ProposalStatusApproved, f.proposals["p1"].Status)
}

func TestApproveProposalAppendsToExistingCategory(t *testing.T) {
	f := newFakeBackend()
	f.orgs["o1"] = &types.Organization{ID: "o1", OwnerID: "u1"}
	f.categories["Clothing"] = &types.Category{ID: "c1", Name: "Clothing", Subcategories: []string{"Jackets"}}
	f.proposals["p1"] = &types.CategoryProposal{
		ID:             "p1",
		OrganizationID: "o1",
		Category:       "Clothing",
		Subcategory:    utils.StringPtr("Scarves"),
	}
	s := newService(f)

	require.NoError(t, s.ApproveProposal(context.Background(), "p1"))
	assert.Equal(t, []string{"Jackets", "Scarves"}, f.categories["Clothing"].Subcategories)
}

func TestApproveProposalSkipsDuplicateSubcategory(t *testing.T) {
	f := newFakeBackend()
	f.orgs["o1"] = &types.Organization{ID: "o1", OwnerID: "u1"}
	f.categories["Clothing"] = &types.Category{ID: "c1", Name: "Clothing", Subcategories: []string{"Scarves"}}
	f.proposals["p1"] = &types.CategoryProposal{
		ID:             "p1",
		OrganizationID: "o1",
		Category:       "Clothing",
		Subcategory:    utils.StringPtr("Scarves"),
	}
	s := newService(f)

	require.NoError(t, s.ApproveProposal(context.Background(), "p1"))
	assert.Equal(t, []string{"Scarves"}, f.categories["Clothing"].Subcategories)
}
