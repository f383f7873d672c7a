// Package seed 写入演示用经纪人、管理员和房源
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type Options struct {
	Password   string
	AdminEmail string // 为空则不建管理员
}

type Result struct {
	Users    []domain.User
	Listings int
}

var agents = []domain.User{
	{
		Email: "dana.russo@topchoicerealty.com", Name: "Dana Russo", Phone: "929-488-3666",
		Bio: "South Shore specialist. Fifteen years helping families trade up from starter homes.",
	},
	{
		Email: "marcus.hill@topchoicerealty.com", Name: "Marcus Hill", Phone: "929-488-3667",
		Bio: "North Shore condos, townhouses and first-time buyers. Ferry commuter myself.",
	},
}

func img(id string) string { return "https://images.unsplash.com/photo-" + id + "?w=800" }

var listings = []domain.Listing{
	{
		Title: "Colonial with Bay Views", Address: "118 Seaside Ave", Neighborhood: "Great Kills",
		Price: 749000, Beds: 4, Baths: 2.5, Sqft: 2350, Status: domain.StatusActive,
		Description: "Center-hall colonial a block from the marina. Granite kitchen, oak floors, finished basement and a deep yard with a paver patio.",
		ImageURLs:   []string{img("1600596542815-ffad4c1539a9"), img("1600607687939-ce8a6c25118c")},
	},
	{
		Title: "Townhouse Near the Ferry", Address: "402 Victory Blvd", Neighborhood: "St. George",
		Price: 615000, Beds: 3, Baths: 2, Sqft: 1750, Status: domain.StatusActive,
		Description: "Open plan townhouse with central air and a roof deck facing lower Manhattan. Eight minutes on foot to the ferry terminal.",
		ImageURLs:   []string{img("1600607687644-c7171b42498b"), img("1600607688960-e095ff83135b")},
	},
	{
		Title: "Renovated Ranch with Garage", Address: "771 Hylan Blvd", Neighborhood: "New Dorp",
		Price: 548000, Beds: 3, Baths: 2, Sqft: 1580, Status: domain.StatusActive,
		Description: "Single-level living with a new kitchen and baths, wood-burning fireplace, two-car garage and a fenced yard.",
		ImageURLs:   []string{img("1600566752355-35792bedcfea")},
	},
	{
		Title: "Waterfront Estate with Dock", Address: "12 Ocean Ter", Neighborhood: "Tottenville",
		Price: 1240000, Beds: 5, Baths: 4, Sqft: 4100, Status: domain.StatusActive,
		Description: "Custom estate on the Arthur Kill with a private dock, chef's kitchen, media room and a wine cellar.",
		ImageURLs:   []string{img("1600607687920-4e2a09cf159d"), img("1600585154340-be6161a56a0c")},
	},
	{
		Title: "Cape Cod Starter Home", Address: "230 Richmond Ave", Neighborhood: "Eltingville",
		Price: 429000, Beds: 2, Baths: 1, Sqft: 1180, Status: domain.StatusActive,
		Description: "Well kept cape with an eat-in kitchen, hardwood floors, full basement and a yard with a storage shed.",
		ImageURLs:   []string{img("1600047509807-ba8f99d2cdde")},
	},
	{
		Title: "Split-Level with Pool", Address: "561 Amboy Rd", Neighborhood: "Huguenot",
		Price: 679000, Beds: 4, Baths: 3, Sqft: 2150, Status: domain.StatusPending,
		Description: "Updated split-level with an in-ground pool, island kitchen and a lower-level office. Close to parks and schools.",
		ImageURLs:   []string{img("1600585154526-990dced4db0d")},
	},
	{
		Title: "Victorian on a Corner Lot", Address: "884 Castleton Ave", Neighborhood: "Stapleton",
		Price: 589000, Beds: 3, Baths: 2, Sqft: 1980, Status: domain.StatusSold,
		Description: "Victorian with high ceilings, original moldings and stained glass. Updated mechanicals and a wrap-around porch.",
		ImageURLs:   []string{img("1600047509782-20d39509f26d")},
	},
	{
		Title: "New Construction Colonial", Address: "341 Arthur Kill Rd", Neighborhood: "Annadale",
		Price: 799000, Beds: 4, Baths: 3.5, Sqft: 2800, Status: domain.StatusActive,
		Description: "Never lived in. Quartz kitchen, smart thermostats, energy-efficient systems and a two-car garage.",
		ImageURLs:   []string{img("1600585154084-4e5fe7c39198"), img("1600585152220-90363fe7e115")},
	},
}

// Run 已存在的邮箱跳过；房源按顺序轮流分给经纪人
func Run(ctx context.Context, users domain.UserRepository, repo domain.ListingRepository, o Options, l *zap.Logger) (Result, error) {
	if len(o.Password) < 8 {
		return Result{}, errors.New("seed password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(o.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	var res Result
	accounts := make([]domain.User, 0, len(agents)+1)
	for _, a := range agents {
		a.Role = domain.RoleAgent
		accounts = append(accounts, a)
	}
	if o.AdminEmail != "" {
		accounts = append(accounts, domain.User{Email: o.AdminEmail, Name: "Administrator", Role: domain.RoleAdmin})
	}

	var agentIDs []string
	for _, u := range accounts {
		u.PasswordHash = hash
		switch err := users.Create(ctx, &u); {
		case errors.Is(err, domain.ErrEmailTaken):
			existing, ferr := users.FindByEmail(ctx, u.Email)
			if ferr != nil {
				return res, fmt.Errorf("load %s: %w", u.Email, ferr)
			}
			u = *existing
			l.Info("user exists, skipped", zap.String("email", u.Email))
		case err != nil:
			return res, fmt.Errorf("create %s: %w", u.Email, err)
		default:
			l.Info("user created", zap.String("email", u.Email), zap.String("role", u.Role))
		}
		res.Users = append(res.Users, u)
		if u.Role == domain.RoleAgent {
			agentIDs = append(agentIDs, u.ID)
		}
	}

	for i, item := range listings {
		item.AgentID = agentIDs[i%len(agentIDs)]
		item.ImageURLs = append([]string(nil), item.ImageURLs...)
		if item.Status == domain.StatusSold {
			now := time.Now().UTC()
			item.SoldDate = &now
		}
		if err := repo.Create(ctx, &item); err != nil {
			return res, fmt.Errorf("create listing %q: %w", item.Title, err)
		}
		res.Listings++
	}
	l.Info("listings created", zap.Int("count", res.Listings))
	return res, nil
}
