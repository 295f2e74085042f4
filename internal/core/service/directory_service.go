package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

type directoryService struct {
	admins ports.AdminRepository
	links  ports.LinkRepository
	log    zerolog.Logger
}

// NewDirectoryService returns a DirectoryService over the admin allow-list and
// the link catalog.
func NewDirectoryService(admins ports.AdminRepository, links ports.LinkRepository, log zerolog.Logger) ports.DirectoryService {
	return &directoryService{admins: admins, links: links, log: log}
}

// AddAdmin inserts a new admin. Unlike identity registration this path rejects
// duplicates: an existing username yields domain.ErrAdminExists.
func (s *directoryService) AddAdmin(ctx context.Context, username string) error {
	if err := s.admins.Add(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("admin added")
	return nil
}

func (s *directoryService) IsAdmin(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	return s.admins.Exists(ctx, username)
}

// AddLink inserts a new catalog entry. A duplicate name yields
// domain.ErrLinkExists.
func (s *directoryService) AddLink(ctx context.Context, name, url string) (*domain.Link, error) {
	link, err := s.links.Add(ctx, name, url)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("name", name).Str("url", url).Msg("link added")
	return link, nil
}

func (s *directoryService) ListLinks(ctx context.Context) ([]domain.Link, error) {
	links, err := s.links.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}
