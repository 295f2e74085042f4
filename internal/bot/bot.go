// Package bot is the messaging ingress adapter: it consumes Telegram updates
// and translates them into calls against the registration, directory, and
// notify services. All replies are transport-level translation; business
// invariants live in the core services.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/api/metrics"
	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

const (
	callbackShowLinks = "show_links"

	replyWelcome      = "Welcome! Use the button below to show the links."
	replyPhonePrompt  = "Please send your phone number in the format 09xxxxxxxx."
	replyInvalidPhone = "Invalid phone number format. Please send your phone number in the format 09xxxxxxxx."
	replyNotAdmin     = "You are not authorized to send QR codes."
	replyNoCode       = "No QR code found in the image."
	replyLinksHeader  = "Here are the links:"
)

// client is the slice of the Telegram API the bot uses; *tgbotapi.BotAPI
// satisfies it.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Deduper filters redelivered updates. The Redis-backed implementation lives
// in internal/infrastructure/db/redis.
type Deduper interface {
	IsDuplicate(ctx context.Context, updateID int) (bool, error)
	Mark(ctx context.Context, updateID int) error
}

type Bot struct {
	api          client
	registration ports.RegistrationService
	directory    ports.DirectoryService
	notify       ports.NotifyService
	dedup        Deduper
	httpClient   *http.Client
	log          zerolog.Logger
	dispatcher   *dispatcher
}

// New wires the bot against its collaborators. numWorkers controls the update
// fan-out; httpClient may be nil, in which case http.DefaultClient is used for
// photo downloads.
func New(
	api client,
	registration ports.RegistrationService,
	directory ports.DirectoryService,
	notify ports.NotifyService,
	dedup Deduper,
	httpClient *http.Client,
	numWorkers int,
	log zerolog.Logger,
) *Bot {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	b := &Bot{
		api:          api,
		registration: registration,
		directory:    directory,
		notify:       notify,
		dedup:        dedup,
		httpClient:   httpClient,
		log:          log,
	}
	b.dispatcher = newDispatcher(numWorkers, b.handleUpdate, log)
	return b
}

// Run consumes the update channel until ctx is cancelled or the channel
// closes. Duplicate updates are dropped before dispatch.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.dispatcher.start(ctx)
	b.log.Info().Msg("bot consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if b.isDuplicate(ctx, update.UpdateID) {
				metrics.BotUpdatesTotal.WithLabelValues("duplicate").Inc()
				continue
			}
			b.dispatcher.enqueue(update)
		}
	}
}

func (b *Bot) isDuplicate(ctx context.Context, updateID int) bool {
	if b.dedup == nil {
		return false
	}
	dup, err := b.dedup.IsDuplicate(ctx, updateID)
	if err != nil {
		b.log.Warn().Err(err).Int("update_id", updateID).Msg("dedup check failed, processing anyway")
		return false
	}
	if dup {
		b.log.Debug().Int("update_id", updateID).Msg("duplicate update skipped")
		return true
	}
	if err := b.dedup.Mark(ctx, updateID); err != nil {
		b.log.Warn().Err(err).Int("update_id", updateID).Msg("failed to set dedup key")
	}
	return false
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		metrics.BotUpdatesTotal.WithLabelValues("callback").Inc()
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		metrics.BotUpdatesTotal.WithLabelValues("other").Inc()
		return nil
	case update.Message.IsCommand():
		metrics.BotUpdatesTotal.WithLabelValues("command").Inc()
		return b.handleCommand(update.Message)
	case len(update.Message.Photo) > 0:
		metrics.BotUpdatesTotal.WithLabelValues("photo").Inc()
		return b.handlePhoto(ctx, update.Message)
	case update.Message.Text != "":
		metrics.BotUpdatesTotal.WithLabelValues("text").Inc()
		return b.handleText(ctx, update.Message)
	default:
		metrics.BotUpdatesTotal.WithLabelValues("other").Inc()
		return nil
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	if msg.Command() != "start" {
		return nil
	}

	welcome := tgbotapi.NewMessage(msg.Chat.ID, replyWelcome)
	welcome.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Show Links", callbackShowLinks),
		),
	)
	if _, err := b.api.Send(welcome); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	return b.reply(msg.Chat.ID, replyPhonePrompt)
}

// handleCallback answers the "Show Links" button by editing the original
// message into a keyboard of catalog links.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Data != callbackShowLinks {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack failed")
	}
	if query.Message == nil {
		return nil
	}

	links, err := b.directory.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(links))
	for _, link := range links {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(link.Name, link.URL),
		))
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		query.Message.Chat.ID,
		query.Message.MessageID,
		replyLinksHeader,
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("send links: %w", err)
	}
	return nil
}

// handleText treats any plain text message as a phone registration attempt.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	err := b.registration.Register(ctx, msg.Text, msg.Chat.ID)
	switch {
	case errors.Is(err, domain.ErrInvalidPhone):
		return b.reply(msg.Chat.ID, replyInvalidPhone)
	case err != nil:
		return b.reply(msg.Chat.ID, fmt.Sprintf("Error registering: %v", err))
	default:
		return b.reply(msg.Chat.ID, fmt.Sprintf("Thank you! Your phone number %s has been registered.", msg.Text))
	}
}

// handlePhoto downloads the largest photo size and runs the decode-and-notify
// pipeline keyed by the sender's username. The image lives only in this call
// frame, so release on every exit path comes for free.
//
// The allow-list is consulted before the download so non-admin senders cost
// nothing; the pipeline re-checks it and stays the authority either way.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) error {
	var username string
	if msg.From != nil {
		username = msg.From.UserName
	}

	admin, err := b.directory.IsAdmin(ctx, username)
	if err != nil {
		b.log.Warn().Err(err).Str("username", username).Msg("admin pre-check failed, deferring to pipeline")
	} else if !admin {
		return b.reply(msg.Chat.ID, replyNotAdmin)
	}

	image, err := b.downloadPhoto(ctx, msg.Photo[len(msg.Photo)-1].FileID)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("photo download failed")
		return b.reply(msg.Chat.ID, fmt.Sprintf("Failed to send message: %v", err))
	}

	result := b.notify.HandleCodeImage(ctx, username, image)
	return b.reply(msg.Chat.ID, replyForResult(result))
}

func replyForResult(result domain.DispatchResult) string {
	switch result.Outcome {
	case domain.OutcomeDelivered:
		return fmt.Sprintf("QR code decoded: %s", result.Detail)
	case domain.OutcomeTargetNotFound:
		return fmt.Sprintf("No user found with phone number %s.", result.Detail)
	default:
		switch result.Detail {
		case domain.DetailUnauthorized:
			return replyNotAdmin
		case domain.DetailNoCode:
			return replyNoCode
		default:
			return fmt.Sprintf("Failed to send message: %s", result.Detail)
		}
	}
}

func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) reply(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
