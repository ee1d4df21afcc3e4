package domain

import "time"

// CleanupReason says why a remote image had to be deleted.
type CleanupReason string

const (
	CleanupListingDeleted CleanupReason = "listing_deleted"
	CleanupImageRemoved   CleanupReason = "image_removed"

	// CleanupUploadRolledBack covers images uploaded for a write that failed.
	CleanupUploadRolledBack CleanupReason = "upload_rolled_back"
)

// MediaCleanupRecord tracks a remote image whose deletion failed so it can be
// retried later.
type MediaCleanupRecord struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	ListingID string        `json:"listing_id"`
	Reason    CleanupReason `json:"reason"`
	Attempts  int           `json:"attempts"`
	LastError string        `json:"last_error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewMediaCleanupRecord returns a pending record for a failed deletion.
func NewMediaCleanupRecord(url, listingID string, reason CleanupReason) *MediaCleanupRecord {
	now := time.Now().UTC()
	return &MediaCleanupRecord{
		URL:       url,
		ListingID: listingID,
		Reason:    reason,
		Attempts:  1,
		LastError: "remote delete failed",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
