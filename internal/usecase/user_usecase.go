package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const bcryptCost = 10

// UserUsecase covers registration, login and account lookups.
type UserUsecase struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	reviews  domain.ReviewRepository
	tokens   domain.TokenManager
	logger   *logger.Logger
}

func NewUserUsecase(users domain.UserRepository, listings domain.ListingRepository, reviews domain.ReviewRepository, tokens domain.TokenManager, log *logger.Logger) *UserUsecase {
	return &UserUsecase{
		users:    users,
		listings: listings,
		reviews:  reviews,
		tokens:   tokens,
		logger:   log.Named("UserUsecase"),
	}
}

// Register creates the account and returns it with a session token.
func (uc *UserUsecase) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, "", err
	}

	taken, err := uc.users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		uc.logger.Info("Registration rejected, user exists", zap.String("email", user.Email))
		return nil, "", fmt.Errorf("%w: User already exists", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	uc.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, token, nil
}

// Login checks the credentials and returns a fresh session token.
func (uc *UserUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: All fields are required", domain.ErrInvalidInput)
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: User not found", domain.ErrNotFound)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Info("Login rejected, bad password", zap.String("user_id", user.ID))
		return nil, "", fmt.Errorf("%w: Invalid credentials", domain.ErrUnauthorized)
	}

	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *UserUsecase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: User not found", domain.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// AdminStats is the admin dashboard payload.
type AdminStats struct {
	TotalUsers    int64             `json:"totalUsers"`
	TotalListings int64             `json:"totalListings"`
	TotalReviews  int64             `json:"totalReviews"`
	Users         []*domain.User    `json:"users"`
	Listings      []*domain.Listing `json:"listings"`
	Reviews       []*domain.Review  `json:"reviews"`
}

// AdminStats loads the counts and full collections concurrently.
func (uc *UserUsecase) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalUsers, err = uc.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalListings, err = uc.listings.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalReviews, err = uc.reviews.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Users, err = uc.users.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Listings, err = uc.listings.Find(gctx, domain.ListingFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.Reviews, err = uc.reviews.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("Failed to load admin stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}
