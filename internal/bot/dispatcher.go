package bot

import (
	"context"
	"hash/fnv"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// dispatcher routes updates to a fixed set of workers using consistent hashing
// on the chat id, guaranteeing per-chat handling order while letting
// independent chats proceed in parallel. Each pipeline invocation stays
// synchronous inside its worker.
type dispatcher struct {
	workers []chan tgbotapi.Update
	handle  func(ctx context.Context, update tgbotapi.Update) error
	log     zerolog.Logger
}

// newDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func newDispatcher(numWorkers int, handle func(ctx context.Context, update tgbotapi.Update) error, log zerolog.Logger) *dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &dispatcher{
		workers: make([]chan tgbotapi.Update, numWorkers),
		handle:  handle,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan tgbotapi.Update, channelBuffer)
	}
	return d
}

// start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *dispatcher) start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// enqueue sends an update to the worker responsible for its chat.
// The call is non-blocking up to channelBuffer capacity.
func (d *dispatcher) enqueue(update tgbotapi.Update) {
	d.workers[d.shardIndex(chatIDOf(update))] <- update
}

// shardIndex maps a chat id deterministically to a worker index.
func (d *dispatcher) shardIndex(chatID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(chatID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *dispatcher) runWorker(ctx context.Context, id int, ch <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if err := d.handle(ctx, update); err != nil {
				d.log.Error().Err(err).
					Int("update_id", update.UpdateID).
					Int("worker_id", id).
					Msg("update handling failed")
			}
		}
	}
}

// chatIDOf extracts the chat an update belongs to, falling back to zero for
// update kinds without one.
func chatIDOf(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
