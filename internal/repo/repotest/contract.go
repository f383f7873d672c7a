// Package repotest 是两套仓储实现共用的行为用例
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type Repos struct {
	Users     domain.UserRepository
	Listings  domain.ListingRepository
	Inquiries domain.InquiryRepository
	Customers domain.CustomerRepository
}

func Run(t *testing.T, r Repos) {
	t.Run("users", func(t *testing.T) { users(t, r.Users) })
	t.Run("listings", func(t *testing.T) { listings(t, r.Listings) })
	t.Run("inquiries", func(t *testing.T) { inquiries(t, r.Inquiries) })
	t.Run("customers", func(t *testing.T) { customers(t, r.Customers) })
}

func ptr[T any](v T) *T { return &v }

func NewListing(agentID, title, hood string, price float64, beds int) *domain.Listing {
	return &domain.Listing{
		Title:        title,
		Address:      "10 Hylan Blvd, Staten Island, NY",
		Neighborhood: hood,
		Price:        price,
		Beds:         beds,
		Baths:        1.5,
		Sqft:         1200,
		Description:  "Bright home with a renovated kitchen and yard.",
		ImageURLs:    []string{"https://img.example.com/a.jpg"},
		Status:       domain.StatusActive,
		AgentID:      agentID,
	}
}

func users(t *testing.T, repo domain.UserRepository) {
	ctx := context.Background()
	zed := &domain.User{Email: "zed@realty.test", PasswordHash: "h", Name: "Zed", Phone: "718-555-0100", Role: domain.RoleAgent}
	amy := &domain.User{Email: "amy@realty.test", PasswordHash: "h", Name: "Amy", Phone: "718-555-0101", Role: domain.RoleAgent}
	root := &domain.User{Email: "root@realty.test", PasswordHash: "h", Name: "Root", Role: domain.RoleAdmin}
	for _, u := range []*domain.User{zed, amy, root} {
		require.NoError(t, repo.Create(ctx, u))
		require.True(t, utils.IsObjectID(u.ID))
	}

	err := repo.Create(ctx, &domain.User{Email: "amy@realty.test", Name: "Dup", Role: domain.RoleAgent})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := repo.FindByEmail(ctx, "amy@realty.test")
	require.NoError(t, err)
	assert.Equal(t, amy.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = repo.FindByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.FindByID(ctx, utils.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	agents, err := repo.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Amy", agents[0].Name)
	assert.Equal(t, "Zed", agents[1].Name)

	byIDs, err := repo.FindByIDs(ctx, []string{zed.ID, "bogus", root.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	list, total, err := repo.List(ctx, domain.UserFilter{Q: "ZED", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, zed.ID, list[0].ID)

	_, total, err = repo.List(ctx, domain.UserFilter{Offset: 2, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	updated, err := repo.UpdateProfile(ctx, amy.ID, domain.ProfileUpdate{Bio: ptr("South Shore specialist")})
	require.NoError(t, err)
	assert.Equal(t, "South Shore specialist", updated.Bio)
	assert.Equal(t, "Amy", updated.Name)

	require.NoError(t, repo.Delete(ctx, root.ID))
	assert.ErrorIs(t, repo.Delete(ctx, root.ID), domain.ErrNotFound)
}

func listings(t *testing.T, repo domain.ListingRepository) {
	ctx := context.Background()
	agentA, agentB := utils.NewID(), utils.NewID()

	cheap := NewListing(agentA, "Cozy Cape (needs TLC)", "Great Kills", 450000, 2)
	mid := NewListing(agentA, "Colonial near the ferry", "St. George", 700000, 3)
	big := NewListing(agentB, "Waterfront estate", "Tottenville", 1500000, 5)
	sold := NewListing(agentB, "Sold ranch home", "Great Kills", 500000, 3)
	sold.Status = domain.StatusSold
	for _, l := range []*domain.Listing{cheap, mid, big, sold} {
		require.NoError(t, repo.Create(ctx, l))
	}

	got, err := repo.FindByID(ctx, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, mid.Title, got.Title)
	assert.Equal(t, agentA, got.AgentID)
	assert.Equal(t, []string{"https://img.example.com/a.jpg"}, got.ImageURLs)

	active := domain.ListingFilter{Status: domain.StatusActive, Page: 1, Limit: 12}
	items, total, err := repo.Search(ctx, active)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, big.ID, items[0].ID, "newest first")

	f := active
	f.MinPrice, f.MaxPrice = ptr(500000.0), ptr(1000000.0)
	items, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, mid.ID, items[0].ID)

	f = active
	f.MinBeds = ptr(3)
	_, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	f = active
	f.Neighborhood = "Great Kills"
	items, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, cheap.ID, items[0].ID)

	// 正则元字符按字面量匹配
	f = active
	f.Q = "(needs"
	items, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, cheap.ID, items[0].ID)

	f = active
	f.Q = "FERRY"
	_, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	f = domain.ListingFilter{Status: domain.StatusActive, Page: 2, Limit: 2}
	items, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)

	f = domain.ListingFilter{Status: domain.StatusActive, Page: 5, Limit: 2}
	items, total, err = repo.Search(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, items)

	mine, err := repo.ListByAgent(ctx, agentA)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, mid.ID, mine[0].ID)

	_, err = repo.UpdateOwned(ctx, mid.ID, agentB, domain.ListingPatch{Title: ptr("Hijacked title")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err = repo.FindByID(ctx, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, "Colonial near the ferry", got.Title)

	soldAt := time.Now().UTC().Truncate(time.Millisecond)
	customerID := utils.NewID()
	updated, err := repo.UpdateOwned(ctx, mid.ID, agentA, domain.ListingPatch{
		Status:     ptr(domain.StatusSold),
		SoldDate:   &soldAt,
		CustomerID: &customerID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, updated.Status)
	assert.Equal(t, customerID, updated.CustomerID)
	require.NotNil(t, updated.SoldDate)
	assert.True(t, soldAt.Equal(*updated.SoldDate))
	assert.Equal(t, "Colonial near the ferry", updated.Title)

	_, err = repo.UpdateOwned(ctx, "zzz", agentA, domain.ListingPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	hoods, err := repo.Neighborhoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Great Kills", "St. George", "Tottenville"}, hoods)

	byIDs, err := repo.FindByIDs(ctx, []string{cheap.ID, big.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	assert.ErrorIs(t, repo.DeleteOwned(ctx, big.ID, agentA), domain.ErrNotFound)
	_, err = repo.FindByID(ctx, big.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteOwned(ctx, big.ID, agentB))
	assert.ErrorIs(t, repo.DeleteOwned(ctx, big.ID, agentB), domain.ErrNotFound)
	_, err = repo.FindByID(ctx, big.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func inquiries(t *testing.T, repo domain.InquiryRepository) {
	ctx := context.Background()
	agent, listing := utils.NewID(), utils.NewID()
	first := &domain.Inquiry{ListingID: listing, AgentID: agent, Name: "Pat", Email: "pat@example.com",
		Message: "Is the basement finished?", EmailStatus: domain.EmailQueued}
	second := &domain.Inquiry{ListingID: listing, AgentID: agent, Name: "Lee", Email: "lee@example.com",
		Message: "Can I tour on Saturday?", EmailStatus: domain.EmailQueued}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &domain.Inquiry{ListingID: listing, AgentID: utils.NewID(), Name: "X",
		Email: "x@example.com", Message: "Other agent's lead", EmailStatus: domain.EmailQueued}))

	require.NoError(t, repo.SetEmailStatus(ctx, first.ID, domain.EmailSent))
	assert.ErrorIs(t, repo.SetEmailStatus(ctx, utils.NewID(), domain.EmailSent), domain.ErrNotFound)

	list, err := repo.ListByAgent(ctx, agent, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, domain.EmailSent, list[1].EmailStatus)
	assert.Equal(t, domain.EmailQueued, list[0].EmailStatus)

	list, err = repo.ListByAgent(ctx, agent, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func customers(t *testing.T, repo domain.CustomerRepository) {
	ctx := context.Background()
	agentA, agentB := utils.NewID(), utils.NewID()
	early := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	noDate := &domain.Customer{AgentID: agentA, FirstName: "Nora", LastName: "Nodate", Email: "nora@example.com", Phone: "7185550000"}
	old := &domain.Customer{AgentID: agentA, FirstName: "Owen", LastName: "Older", Email: "owen@example.com", Phone: "7185550001",
		PurchaseDate: &early, PurchasePrice: ptr(410000.0)}
	recent := &domain.Customer{AgentID: agentA, FirstName: "Rita", LastName: "Recent", Email: "rita@example.com", Phone: "7185550002",
		PurchaseDate: &late}
	other := &domain.Customer{AgentID: agentB, FirstName: "Rita", LastName: "Elsewhere", Email: "rita2@example.com", Phone: "7185550003"}
	for _, c := range []*domain.Customer{noDate, old, recent, other} {
		require.NoError(t, repo.Create(ctx, c))
	}

	list, err := repo.ListByAgent(ctx, agentA, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{recent.ID, old.ID, noDate.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	require.NotNil(t, list[1].PurchasePrice)
	assert.InDelta(t, 410000.0, *list[1].PurchasePrice, 0.001)

	list, err = repo.ListByAgent(ctx, agentA, "rita")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recent.ID, list[0].ID)

	list, err = repo.ListByAgent(ctx, agentA, "555000")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = repo.FindOwned(ctx, other.ID, agentA)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.UpdateOwned(ctx, other.ID, agentA, domain.CustomerPatch{Notes: ptr("mine now")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	listingID := utils.NewID()
	updated, err := repo.UpdateOwned(ctx, noDate.ID, agentA, domain.CustomerPatch{Notes: ptr("Pre-approved"), ListingID: &listingID})
	require.NoError(t, err)
	assert.Equal(t, "Pre-approved", updated.Notes)
	assert.Equal(t, listingID, updated.ListingID)
	assert.Equal(t, "Nora", updated.FirstName)

	assert.ErrorIs(t, repo.DeleteOwned(ctx, other.ID, agentA), domain.ErrNotFound)
	_, err = repo.FindOwned(ctx, other.ID, agentB)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteOwned(ctx, noDate.ID, agentA))
	_, err = repo.FindOwned(ctx, noDate.ID, agentA)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
