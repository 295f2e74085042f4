package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/api/metrics"
	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

const defaultSendTimeout = 10 * time.Second

// AdminGate is the capability check consulted before any decode work. The
// DirectoryService satisfies it; a richer credential mechanism can be swapped
// in later without touching the pipeline.
type AdminGate interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

type notifyService struct {
	gate        AdminGate
	identities  ports.IdentityRepository
	decoder     ports.CodeDecoder
	notifier    ports.Notifier
	greeting    string
	sendTimeout time.Duration
	log         zerolog.Logger
}

// NewNotifyService returns the decode-and-notify engine. greeting is the fixed
// message sent to a resolved chat; sendTimeout bounds the outbound send and
// defaults when non-positive.
func NewNotifyService(
	gate AdminGate,
	identities ports.IdentityRepository,
	decoder ports.CodeDecoder,
	notifier ports.Notifier,
	greeting string,
	sendTimeout time.Duration,
	log zerolog.Logger,
) ports.NotifyService {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &notifyService{
		gate:        gate,
		identities:  identities,
		decoder:     decoder,
		notifier:    notifier,
		greeting:    greeting,
		sendTimeout: sendTimeout,
		log:         log,
	}
}

// HandleCodeImage runs one pipeline invocation: authorize, decode, resolve,
// dispatch. At most one outbound message is sent per call, with no retry.
func (s *notifyService) HandleCodeImage(ctx context.Context, username string, image []byte) domain.DispatchResult {
	ok, err := s.gate.IsAdmin(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("admin check failed")
		return s.failed(err.Error())
	}
	if !ok {
		// Authorization short-circuits: no decode is attempted for non-admins.
		s.log.Warn().Str("username", username).Msg("decode attempt by non-admin")
		return s.failed(domain.DetailUnauthorized)
	}

	start := time.Now()
	payload, found := s.decoder.Decode(image)
	metrics.DecodeDuration.WithLabelValues(decodeResult(found)).Observe(time.Since(start).Seconds())
	if !found {
		return s.failed(domain.DetailNoCode)
	}

	identity, err := s.identities.FindByPhone(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.log.Info().Str("payload", payload).Msg("decoded payload has no registered identity")
			metrics.NotificationsTotal.WithLabelValues(string(domain.OutcomeTargetNotFound)).Inc()
			return domain.DispatchResult{Outcome: domain.OutcomeTargetNotFound, Detail: payload}
		}
		s.log.Error().Err(err).Str("payload", payload).Msg("identity lookup failed")
		return s.failed(err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, identity.ChatID, s.greeting); err != nil {
		s.log.Error().Err(err).Str("phone", identity.Phone).Int64("chat_id", identity.ChatID).Msg("notification send failed")
		return s.failed(err.Error())
	}

	s.log.Info().Str("phone", identity.Phone).Int64("chat_id", identity.ChatID).Msg("notification delivered")
	metrics.NotificationsTotal.WithLabelValues(string(domain.OutcomeDelivered)).Inc()
	return domain.DispatchResult{Outcome: domain.OutcomeDelivered, Detail: payload}
}

func (s *notifyService) failed(detail string) domain.DispatchResult {
	metrics.NotificationsTotal.WithLabelValues(string(domain.OutcomeDispatchFailed)).Inc()
	return domain.DispatchResult{Outcome: domain.OutcomeDispatchFailed, Detail: detail}
}

func decodeResult(found bool) string {
	if found {
		return "found"
	}
	return "not_found"
}
