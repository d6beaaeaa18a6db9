package ports

import (
	"context"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/kernel"
)

// CleanerRepository reads cleaner profiles. Profiles are owned by the account service;
// this service only reads them and uses the row as a per-cleaner lock.
type CleanerRepository interface {
	// Add inserts a profile. Used when provisioning cleaners.
	Add(ctx context.Context, profile *cleaner.Profile) error

	// Get loads a profile. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error)

	// Lock loads a profile and locks its row until the transaction ends, serializing
	// assignments of the same cleaner.
	Lock(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error)

	// ListAvailable returns active and verified cleaners.
	ListAvailable(ctx context.Context) ([]*cleaner.Profile, error)
}
