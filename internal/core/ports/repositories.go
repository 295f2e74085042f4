package ports

import (
	"context"

	"github.com/ahnxd/qrnotify/internal/core/domain"
)

// IdentityRepository persists phone → chat mappings. Each call is a single
// atomic unit: concurrent upserts and lookups of the same phone observe either
// the fully-old or fully-new record, never a partial write.
type IdentityRepository interface {
	// Upsert inserts the identity or overwrites the existing record for the
	// same phone (last write wins).
	Upsert(ctx context.Context, identity domain.Identity) error
	// FindByPhone returns the identity for an exact phone match, or
	// domain.ErrIdentityNotFound.
	FindByPhone(ctx context.Context, phone string) (*domain.Identity, error)
}

// AdminRepository persists the admin allow-list.
type AdminRepository interface {
	// Add inserts a new admin. A duplicate username yields domain.ErrAdminExists.
	Add(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
}

// LinkRepository persists the reference link catalog.
type LinkRepository interface {
	// Add inserts a new link. A duplicate name yields domain.ErrLinkExists.
	Add(ctx context.Context, name, url string) (*domain.Link, error)
	// List returns all links in insertion order.
	List(ctx context.Context) ([]domain.Link, error)
}
