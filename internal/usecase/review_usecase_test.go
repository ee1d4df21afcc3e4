package usecase

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	reviews   *MockReviewRepository
	listings  *MockListingRepository
	cache     *MockListingCache
	publisher *MockPublisher
	uc        *ReviewUsecase
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:   new(MockReviewRepository),
		listings:  new(MockListingRepository),
		cache:     new(MockListingCache),
		publisher: new(MockPublisher),
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.uc = NewReviewUsecase(f.reviews, f.listings, f.cache, f.publisher, nil, logger.NewNop())
	return f
}

func reviewedListing(reviewIDs ...string) *domain.Listing {
	l := ownedListing("u/a")
	l.ReviewIDs = reviewIDs
	return l
}

func TestReviewUsecase_Create(t *testing.T) {
	ctx := context.Background()
	author := &domain.User{ID: "bob", Username: "bob"}

	t.Run("success links review to listing", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "l1").Return(reviewedListing(), nil).Once()
		f.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Review).ID = "r1"
		}).Return(nil).Once()
		f.listings.On("PushReview", ctx, "l1", "r1").Return(nil).Once()
		f.cache.On("Delete", ctx, "l1").Return(nil).Once()

		review, err := f.uc.Create(ctx, author, "l1", "Lovely", 5)
		require.NoError(t, err)
		assert.Equal(t, "r1", review.ID)
		assert.Equal(t, "bob", review.Owner.Username)
		f.listings.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertCalled(t, "Publish", ctx, nats.SubjectReviewCreated, mock.Anything)
	})

	t.Run("validation runs before lookups", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			f := newReviewFixture()
			_, err := f.uc.Create(ctx, author, "l1", "ok", rating)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			f.listings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "l1").Return(nil, domain.ErrNotFound).Once()

		_, err := f.uc.Create(ctx, author, "l1", "Lovely", 4)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("listing deleted mid-flight rolls review back", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "l1").Return(reviewedListing(), nil).Once()
		f.reviews.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Review).ID = "r1"
		}).Return(nil).Once()
		f.listings.On("PushReview", ctx, "l1", "r1").Return(domain.ErrNotFound).Once()
		f.reviews.On("Delete", ctx, "r1").Return(nil).Once()

		_, err := f.uc.Create(ctx, author, "l1", "Lovely", 4)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.reviews.AssertExpectations(t)
		f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("cache invalidation failure does not fail the request", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "l1").Return(reviewedListing(), nil).Once()
		f.reviews.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Review).ID = "r1"
		}).Return(nil).Once()
		f.listings.On("PushReview", ctx, "l1", "r1").Return(nil).Once()
		f.cache.On("Delete", ctx, "l1").Return(assert.AnError).Once()

		_, err := f.uc.Create(ctx, author, "l1", "Lovely", 4)
		require.NoError(t, err)
		f.cache.AssertExpectations(t)
	})
}

// memoryCache is a map-backed domain.ListingCache.
type memoryCache map[string]*domain.Listing

func (c memoryCache) Get(_ context.Context, id string) (*domain.Listing, error) {
	if l, ok := c[id]; ok {
		return l, nil
	}
	return nil, domain.ErrCacheMiss
}

func (c memoryCache) Set(_ context.Context, l *domain.Listing) error {
	c[l.ID] = l
	return nil
}

func (c memoryCache) Delete(_ context.Context, id string) error {
	delete(c, id)
	return nil
}

func TestReviewUsecase_CachedListingSeesReviewChanges(t *testing.T) {
	ctx := context.Background()
	author := &domain.User{ID: "bob", Username: "bob"}

	listings := new(MockListingRepository)
	listings.On("GetByID", ctx, "l1").Return(reviewedListing(), nil).Twice()
	listings.On("PushReview", ctx, "l1", "r1").Return(nil).Once()
	listings.On("GetByID", ctx, "l1").Return(reviewedListing("r1"), nil).Twice()
	listings.On("PullReview", ctx, "l1", "r1").Return(nil).Once()
	listings.On("GetByID", ctx, "l1").Return(reviewedListing(), nil).Once()

	reviews := new(MockReviewRepository)
	reviews.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Review).ID = "r1"
	}).Return(nil).Once()
	reviews.On("GetByID", ctx, "r1").Return(&domain.Review{ID: "r1", OwnerID: "bob", ListingID: "l1"}, nil).Once()
	reviews.On("Delete", ctx, "r1").Return(nil).Once()

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	cache := memoryCache{}
	listingUC := NewListingUsecase(ListingDeps{Listings: listings, Cache: cache, Publisher: publisher}, logger.NewNop())
	reviewUC := NewReviewUsecase(reviews, listings, cache, publisher, nil, logger.NewNop())

	before, err := listingUC.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Empty(t, before.ReviewIDs)

	_, err = reviewUC.Create(ctx, author, "l1", "Lovely", 5)
	require.NoError(t, err)

	afterCreate, err := listingUC.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, afterCreate.ReviewIDs)

	require.NoError(t, reviewUC.Delete(ctx, "l1", "r1", "bob"))

	afterDelete, err := listingUC.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Empty(t, afterDelete.ReviewIDs)
	listings.AssertExpectations(t)
}

func TestReviewUsecase_ListForListing(t *testing.T) {
	ctx := context.Background()

	t.Run("missing listing yields empty list", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "gone").Return(nil, domain.ErrNotFound).Once()

		got, err := f.uc.ListForListing(ctx, "gone")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("resolves referenced reviews", func(t *testing.T) {
		f := newReviewFixture()
		f.listings.On("GetByID", ctx, "l1").Return(reviewedListing("r2", "r1"), nil).Once()
		f.reviews.On("FindByIDs", ctx, []string{"r2", "r1"}).Return([]*domain.Review{{ID: "r2"}, {ID: "r1"}}, nil).Once()

		got, err := f.uc.ListForListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r2", got[0].ID)
	})
}

func TestReviewUsecase_Delete(t *testing.T) {
	ctx := context.Background()
	review := &domain.Review{ID: "r1", OwnerID: "bob", ListingID: "l1", Comment: "x", Rating: 3}

	testCases := []struct {
		name     string
		reviewID string
		callerID string
		setup    func(f *reviewFixture)
		wantErr  error
	}{
		{
			name: "author deletes", reviewID: "r1", callerID: "bob",
			setup: func(f *reviewFixture) {
				f.listings.On("GetByID", ctx, "l1").Return(reviewedListing("r1"), nil).Once()
				f.reviews.On("GetByID", ctx, "r1").Return(review, nil).Once()
				f.listings.On("PullReview", ctx, "l1", "r1").Return(nil).Once()
				f.cache.On("Delete", ctx, "l1").Return(nil).Once()
				f.reviews.On("Delete", ctx, "r1").Return(nil).Once()
			},
		},
		{
			name: "listing owner deletes", reviewID: "r1", callerID: "owner",
			setup: func(f *reviewFixture) {
				f.listings.On("GetByID", ctx, "l1").Return(reviewedListing("r1"), nil).Once()
				f.reviews.On("GetByID", ctx, "r1").Return(review, nil).Once()
				f.listings.On("PullReview", ctx, "l1", "r1").Return(nil).Once()
				f.cache.On("Delete", ctx, "l1").Return(nil).Once()
				f.reviews.On("Delete", ctx, "r1").Return(domain.ErrNotFound).Once()
			},
		},
		{
			name: "stranger is forbidden", reviewID: "r1", callerID: "mallory",
			setup: func(f *reviewFixture) {
				f.listings.On("GetByID", ctx, "l1").Return(reviewedListing("r1"), nil).Once()
				f.reviews.On("GetByID", ctx, "r1").Return(review, nil).Once()
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name: "review not on listing", reviewID: "r9", callerID: "bob",
			setup: func(f *reviewFixture) {
				f.listings.On("GetByID", ctx, "l1").Return(reviewedListing("r1"), nil).Once()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "listing missing", reviewID: "r1", callerID: "bob",
			setup: func(f *reviewFixture) {
				f.listings.On("GetByID", ctx, "l1").Return(nil, domain.ErrNotFound).Once()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "missing review id", reviewID: "", callerID: "bob",
			setup:   func(f *reviewFixture) {},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReviewFixture()
			tc.setup(f)

			err := f.uc.Delete(ctx, "l1", tc.reviewID, tc.callerID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				f.listings.AssertNotCalled(t, "PullReview", mock.Anything, mock.Anything, mock.Anything)
				f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			f.listings.AssertExpectations(t)
			f.reviews.AssertExpectations(t)
			f.cache.AssertExpectations(t)
		})
	}
}
