package handler

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AdminStats(ctx context.Context) (*usecase.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AdminStats), args.Error(1)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, owner *domain.User, fields domain.ListingFields, localPaths []string) (*domain.Listing, error) {
	args := m.Called(ctx, owner, fields, localPaths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingService) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingService) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, id, callerID string, fields domain.ListingFields, localPaths []string) (*domain.Listing, error) {
	args := m.Called(ctx, id, callerID, fields, localPaths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, id, callerID string) error {
	return m.Called(ctx, id, callerID).Error(0)
}

func (m *MockListingService) RemoveImage(ctx context.Context, id, imageURL string) error {
	return m.Called(ctx, id, imageURL).Error(0)
}

func (m *MockListingService) ExportCSV(ctx context.Context, ownerID string) ([]byte, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, author *domain.User, listingID, comment string, rating int) (*domain.Review, error) {
	args := m.Called(ctx, author, listingID, comment, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewService) ListForListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, listingID, reviewID, callerID string) error {
	return m.Called(ctx, listingID, reviewID, callerID).Error(0)
}
