// Package seed loads demo accounts and listings from a YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Listings []ListingFixture `yaml:"listings"`
}

type UserFixture struct {
	Name                string `yaml:"name"`
	Email               string `yaml:"email"`
	Password            string `yaml:"password"`
	Role                string `yaml:"role"`
	Status              string `yaml:"status"`
	BusinessName        string `yaml:"business_name"`
	BusinessType        string `yaml:"business_type"`
	BusinessAddress     string `yaml:"business_address"`
	BusinessDescription string `yaml:"business_description"`
}

type ListingFixture struct {
	Owner           string        `yaml:"owner"`
	FoodName        string        `yaml:"food_name"`
	Category        string        `yaml:"category"`
	Description     string        `yaml:"description"`
	OriginalPrice   string        `yaml:"original_price"`
	DiscountedPrice string        `yaml:"discounted_price"`
	Quantity        int           `yaml:"quantity"`
	ExpiresIn       time.Duration `yaml:"expires_in"`
	ImageURL        string        `yaml:"image_url"`
	PickupOnly      bool          `yaml:"pickup_only"`
	PickupAddress   string        `yaml:"pickup_address"`
}

// Result counts what Apply wrote.
type Result struct {
	Users    int
	Listings int
}

// LoadFile parses a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply writes the fixture in one transaction. Users whose email already
// exists are left untouched together with their listings, so reruns are no-ops.
func Apply(ctx context.Context, store repository.Store, hasher usecase.PasswordHasher, clock usecase.Clock, f *Fixture, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock = usecase.ClockOrSystem(clock)
	now := clock.Now()

	users := make([]*domain.User, 0, len(f.Users))
	for i, uf := range f.Users {
		u, err := buildUser(uf, hasher, now)
		if err != nil {
			return Result{}, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, u)
	}

	var res Result
	err := store.Update(ctx, func(tx repository.Tx) error {
		res = Result{}
		owners := make(map[string]*domain.User)
		for _, u := range users {
			err := tx.Users().Create(ctx, u)
			if errors.Is(err, domain.ErrEmailTaken) {
				continue
			}
			if err != nil {
				return err
			}
			owners[domain.NormalizeEmail(u.Email)] = u
			res.Users++
		}

		for i, lf := range f.Listings {
			owner, ok := owners[domain.NormalizeEmail(lf.Owner)]
			if !ok {
				continue
			}
			listing, err := buildListing(lf, owner, now)
			if err != nil {
				return fmt.Errorf("seed listing %d: %w", i, err)
			}
			if err := tx.Listings().Save(ctx, listing); err != nil {
				return err
			}
			entry := domain.NewActivity(domain.ActivityListingCreated, owner.ID, listing.ID, listing.BusinessName+" listed "+listing.FoodName, now)
			entry.BusinessIDs = []string{owner.ID}
			if err := tx.Activity().Append(ctx, entry); err != nil {
				return err
			}
			res.Listings++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	logger.Info("seed applied", zap.Int("users", res.Users), zap.Int("listings", res.Listings))
	return res, nil
}

func buildUser(uf UserFixture, hasher usecase.PasswordHasher, now time.Time) (*domain.User, error) {
	if strings.TrimSpace(uf.Email) == "" || uf.Password == "" {
		return nil, domain.Invalid("email and password are required")
	}
	role := domain.Role(uf.Role)
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, domain.Invalid("unknown role %q", uf.Role)
	}
	status := domain.UserStatus(uf.Status)
	if status == "" {
		status = domain.UserActive
	}
	if !status.Valid() {
		return nil, domain.Invalid("unknown status %q", uf.Status)
	}
	hash, err := hasher.Hash(uf.Password)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           uuid.NewString(),
		Name:         uf.Name,
		Email:        strings.TrimSpace(uf.Email),
		Role:         role,
		Status:       status,
		PasswordHash: hash,
		BusinessProfile: domain.BusinessProfile{
			BusinessName:        uf.BusinessName,
			BusinessType:        uf.BusinessType,
			BusinessAddress:     uf.BusinessAddress,
			BusinessDescription: uf.BusinessDescription,
		},
		CreatedAt: now,
	}, nil
}

func buildListing(lf ListingFixture, owner *domain.User, now time.Time) (*domain.Listing, error) {
	original, err := decimal.NewFromString(lf.OriginalPrice)
	if err != nil {
		return nil, domain.Invalid("original_price %q is not a number", lf.OriginalPrice)
	}
	discounted, err := decimal.NewFromString(lf.DiscountedPrice)
	if err != nil {
		return nil, domain.Invalid("discounted_price %q is not a number", lf.DiscountedPrice)
	}
	if err := domain.CheckPrices(original, discounted); err != nil {
		return nil, err
	}
	category := domain.Category(lf.Category)
	if !category.Valid() {
		return nil, domain.Invalid("unknown category %q", lf.Category)
	}
	expiresIn := lf.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	status := domain.ListingActive
	if lf.Quantity <= 0 {
		status = domain.ListingSoldOut
	}
	return &domain.Listing{
		ID:              uuid.NewString(),
		BusinessID:      owner.ID,
		BusinessName:    owner.DisplayBusinessName(),
		FoodName:        lf.FoodName,
		Category:        category,
		Description:     lf.Description,
		OriginalPrice:   original,
		DiscountedPrice: discounted,
		Quantity:        max(lf.Quantity, 0),
		ExpiryDate:      now.Add(expiresIn),
		ImageURL:        lf.ImageURL,
		PickupOnly:      lf.PickupOnly,
		PickupAddress:   lf.PickupAddress,
		Status:          status,
		CreatedAt:       now,
	}, nil
}
