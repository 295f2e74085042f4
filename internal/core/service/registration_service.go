package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/api/metrics"
	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

type registrationService struct {
	identities ports.IdentityRepository
	log        zerolog.Logger
}

// NewRegistrationService returns a RegistrationService backed by the given
// identity repository.
func NewRegistrationService(identities ports.IdentityRepository, log zerolog.Logger) ports.RegistrationService {
	return &registrationService{identities: identities, log: log}
}

// Register validates the phone format and upserts the mapping. Validation
// failure is reported before any store access.
func (s *registrationService) Register(ctx context.Context, phone string, chatID int64) error {
	if !domain.ValidPhone(phone) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return domain.ErrInvalidPhone
	}

	if err := s.identities.Upsert(ctx, domain.Identity{Phone: phone, ChatID: chatID}); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("register %s: %w", phone, err)
	}

	metrics.RegistrationsTotal.WithLabelValues("accepted").Inc()
	s.log.Info().Str("phone", phone).Int64("chat_id", chatID).Msg("identity registered")
	return nil
}
