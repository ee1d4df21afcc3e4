package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	users    *MockUserRepository
	listings *MockListingRepository
	reviews  *MockReviewRepository
	tokens   *MockTokenManager
	uc       *UserUsecase
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    new(MockUserRepository),
		listings: new(MockListingRepository),
		reviews:  new(MockReviewRepository),
		tokens:   new(MockTokenManager),
	}
	f.uc = NewUserUsecase(f.users, f.listings, f.reviews, f.tokens, logger.NewNop())
	return f
}

func TestUserUsecase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes password and issues token", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil).Once()
		f.users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = "u1"
		}).Return(nil).Once()
		f.tokens.On("Issue", "u1").Return("tok", nil).Once()

		user, token, err := f.uc.Register(ctx, "alice", "  Alice@Example.com ", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
		cost, err := bcrypt.Cost([]byte(user.PasswordHash))
		require.NoError(t, err)
		assert.Equal(t, 10, cost)
		f.users.AssertExpectations(t)
	})

	t.Run("taken username or email is a conflict", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(true, nil).Once()

		_, _, err := f.uc.Register(ctx, "alice", "alice@example.com", "secret1")
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing field is rejected before any lookup", func(t *testing.T) {
		f := newUserFixture()
		_, _, err := f.uc.Register(ctx, "", "alice@example.com", "secret1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "All fields are required")
		f.users.AssertNotCalled(t, "ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate key from store surfaces as conflict", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil).Once()
		f.users.On("Create", ctx, mock.Anything).Return(domain.ErrConflict).Once()

		_, _, err := f.uc.Register(ctx, "alice", "alice@example.com", "secret1")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUserUsecase_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}

	testCases := []struct {
		name     string
		email    string
		password string
		setup    func(f *userFixture)
		wantErr  error
	}{
		{
			name: "success", email: "ALICE@example.com", password: "secret1",
			setup: func(f *userFixture) {
				f.users.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil).Once()
				f.tokens.On("Issue", "u1").Return("tok", nil).Once()
			},
		},
		{
			name: "missing password", email: "alice@example.com", password: "",
			setup:   func(f *userFixture) {},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown email", email: "bob@example.com", password: "secret1",
			setup: func(f *userFixture) {
				f.users.On("GetByEmail", ctx, "bob@example.com").Return(nil, domain.ErrNotFound).Once()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "wrong password", email: "alice@example.com", password: "nope123",
			setup: func(f *userFixture) {
				f.users.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil).Once()
			},
			wantErr: domain.ErrUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newUserFixture()
			tc.setup(f)

			user, token, err := f.uc.Login(ctx, tc.email, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", user.ID)
			assert.Equal(t, "tok", token)
		})
	}
}

func TestUserUsecase_AdminStats(t *testing.T) {
	ctx := context.Background()

	t.Run("collects counts and collections", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("Count", mock.Anything).Return(int64(2), nil)
		f.listings.On("Count", mock.Anything).Return(int64(1), nil)
		f.reviews.On("Count", mock.Anything).Return(int64(3), nil)
		f.users.On("List", mock.Anything).Return([]*domain.User{{ID: "u1"}, {ID: "u2"}}, nil)
		f.listings.On("Find", mock.Anything, domain.ListingFilter{}).Return([]*domain.Listing{{ID: "l1"}}, nil)
		f.reviews.On("List", mock.Anything).Return([]*domain.Review{{ID: "r1"}}, nil)

		stats, err := f.uc.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalUsers)
		assert.Equal(t, int64(1), stats.TotalListings)
		assert.Equal(t, int64(3), stats.TotalReviews)
		assert.Len(t, stats.Users, 2)
		assert.Len(t, stats.Listings, 1)
		assert.Len(t, stats.Reviews, 1)
	})

	t.Run("any failure fails the whole call", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("Count", mock.Anything).Return(int64(0), errors.New("db down"))
		f.listings.On("Count", mock.Anything).Return(int64(1), nil).Maybe()
		f.reviews.On("Count", mock.Anything).Return(int64(3), nil).Maybe()
		f.users.On("List", mock.Anything).Return([]*domain.User{}, nil).Maybe()
		f.listings.On("Find", mock.Anything, mock.Anything).Return([]*domain.Listing{}, nil).Maybe()
		f.reviews.On("List", mock.Anything).Return([]*domain.Review{}, nil).Maybe()

		_, err := f.uc.AdminStats(ctx)
		assert.Error(t, err)
	})
}

func TestUserUsecase_GetProfile(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.users.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	_, err := f.uc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "User not found")
}
