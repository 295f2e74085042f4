package ports

import "context"

// CodeDecoder extracts at most one UTF-8 payload from an image. A malformed or
// unreadable image is a not-found result, never an error; when several codes
// are present any single decoded result is acceptable.
type CodeDecoder interface {
	Decode(image []byte) (payload string, found bool)
}

// Notifier delivers a single outbound message to a chat. One call is one
// best-effort attempt; retry policy, if any, belongs to the caller.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}
