package ports

import (
	"context"

	"github.com/ahnxd/qrnotify/internal/core/domain"
)

// RegistrationService validates and stores phone → chat registrations.
type RegistrationService interface {
	// Register upserts the mapping. A malformed phone yields
	// domain.ErrInvalidPhone and leaves the store untouched; re-registering an
	// existing phone overwrites its chat (deliberate upsert semantics, unlike
	// the admin and link paths which reject duplicates).
	Register(ctx context.Context, phone string, chatID int64) error
}

// DirectoryService provisions admins and links and answers the authorization
// question for the decode-and-notify action.
type DirectoryService interface {
	AddAdmin(ctx context.Context, username string) error
	// IsAdmin is a pure membership check with no side effects.
	IsAdmin(ctx context.Context, username string) (bool, error)
	AddLink(ctx context.Context, name, url string) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.Link, error)
}

// NotifyService runs the decode-and-notify pipeline: authorize, decode,
// resolve, dispatch. Errors never escape as Go errors; every invocation ends
// in a DispatchResult for the caller to translate.
type NotifyService interface {
	HandleCodeImage(ctx context.Context, username string, image []byte) domain.DispatchResult
}
