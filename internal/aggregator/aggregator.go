// Package aggregator maintains the admin-facing snapshot of the six domain
// collections and funnels every mutation through a write-then-refetch
// cycle. There is no incremental patching: after any successful write the
// affected collections are re-read wholesale, and if two mutations race the
// snapshot reflects whichever refetch resolved last.
package aggregator

import (
	"context"
	"sync"
	"time"

	"givelocal/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type CategorySource interface {
	AllCategories(ctx context.Context) ([]*types.Category, error)
}

type OrganizationSource interface {
	AllOrganizations(ctx context.Context) ([]*types.Organization, error)
}

type ProfileSource interface {
	AllProfiles(ctx context.Context) ([]*types.Profile, error)
}

type RoleSource interface {
	AllRoles(ctx context.Context) ([]*types.UserRole, error)
}

type ProposalSource interface {
	AllProposals(ctx context.Context) ([]*types.CategoryProposal, error)
}

type ItemRequestSource interface {
	AllRequests(ctx context.Context) ([]*types.ItemRequest, error)
}

type ListingSource interface {
	AllListings(ctx context.Context) ([]*types.DonationListing, error)
}

// Snapshot is one consistent-enough view of the domain collections. Users
// carry their role merged in; proposals carry the proposing organization's
// name.
type Snapshot struct {
	Categories    []*types.Category        `json:"categories"`
	Organizations []*types.Organization    `json:"organizations"`
	Users         []*types.AccountUser     `json:"users"`
	Proposals     []*types.ProposalView    `json:"proposals"`
	ItemRequests  []*types.ItemRequest     `json:"item_requests"`
	Listings      []*types.DonationListing `json:"listings"`
	FetchedAt     time.Time                `json:"fetched_at"`
}

type Aggregator struct {
	logger *logrus.Logger

	categories    CategorySource
	organizations OrganizationSource
	profiles      ProfileSource
	roles         RoleSource
	proposals     ProposalSource
	requests      ItemRequestSource
	listings      ListingSource

	mu       sync.RWMutex
	snapshot Snapshot
}

func New(
	logger *logrus.Logger,
	categories CategorySource,
	organizations OrganizationSource,
	profiles ProfileSource,
	roles RoleSource,
	proposals ProposalSource,
	requests ItemRequestSource,
	listings ListingSource,
) *Aggregator {
	return &Aggregator{
		logger:        logger,
		categories:    categories,
		organizations: organizations,
		profiles:      profiles,
		roles:         roles,
		proposals:     proposals,
		requests:      requests,
		listings:      listings,
	}
}

// Refresh fetches all six collections in parallel and swaps the snapshot.
// A collection whose fetch fails keeps its previous value; the error is
// logged and absorbed.
func (a *Aggregator) Refresh(ctx context.Context) {
	next := a.Snapshot()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, err := a.categories.AllCategories(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh categories")
			return nil
		}
		next.Categories = categories
		return nil
	})

	g.Go(func() error {
		organizations, err := a.organizations.AllOrganizations(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh organizations")
			return nil
		}
		next.Organizations = organizations
		return nil
	})

	g.Go(func() error {
		users, err := a.fetchUsers(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh users")
			return nil
		}
		next.Users = users
		return nil
	})

	g.Go(func() error {
		requests, err := a.requests.AllRequests(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh item requests")
			return nil
		}
		next.ItemRequests = requests
		return nil
	})

	g.Go(func() error {
		listings, err := a.listings.AllListings(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh listings")
			return nil
		}
		next.Listings = listings
		return nil
	})

	g.Go(func() error {
		proposals, err := a.proposals.AllProposals(gctx)
		if err != nil {
			a.logger.WithError(err).Error("failed to refresh proposals")
			return nil
		}
		// The organization-name join uses the organizations fetched in a
		// sibling goroutine, so materialize it after the group finishes.
		views := make([]*types.ProposalView, 0, len(proposals))
		for _, p := range proposals {
			views = append(views, &types.ProposalView{CategoryProposal: *p})
		}
		next.Proposals = views
		return nil
	})

	_ = g.Wait() // goroutines swallow their own errors

	orgNames := make(map[string]string, len(next.Organizations))
	for _, org := range next.Organizations {
		orgNames[org.ID] = org.Name
	}
	for _, view := range next.Proposals {
		view.OrganizationName = orgNames[view.OrganizationID]
	}

	next.FetchedAt = time.Now()

	a.mu.Lock()
	a.snapshot = next
	a.mu.Unlock()
}

func (a *Aggregator) fetchUsers(ctx context.Context) ([]*types.AccountUser, error) {
	profiles, err := a.profiles.AllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := a.roles.AllRoles(ctx)
	if err != nil {
		return nil, err
	}

	roleByUser := make(map[string]types.Role, len(roles))
	for _, role := range roles {
		roleByUser[role.UserID] = role.Role
	}

	// Profiles without a role record are half-created signups; they are
	// excluded from the merged view, mirroring the logged-in gate.
	users := make([]*types.AccountUser, 0, len(profiles))
	for _, profile := range profiles {
		role, ok := roleByUser[profile.ID]
		if !ok {
			continue
		}
		users = append(users, &types.AccountUser{Profile: *profile, Role: role})
	}

	return users, nil
}

// Snapshot returns the current view. The slices are shared; callers must
// not mutate them.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Do runs a write and, when it succeeds, re-fetches the collections before
// reporting the outcome. Failed writes surface their error to the caller;
// the snapshot is left alone.
func (a *Aggregator) Do(ctx context.Context, op func(ctx context.Context) error) types.MutationResult {
	if err := op(ctx); err != nil {
		return types.Failed(err)
	}

	a.Refresh(ctx)
	return types.Succeeded()
}
