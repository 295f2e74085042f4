package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/core/domain"
)

type stubClient struct {
	sent    []tgbotapi.Chattable
	fileURL string
}

func (c *stubClient) Send(m tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.sent = append(c.sent, m)
	return tgbotapi.Message{}, nil
}

func (c *stubClient) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (c *stubClient) GetFileDirectURL(string) (string, error) {
	return c.fileURL, nil
}

func (c *stubClient) textOf(t *testing.T, i int) string {
	t.Helper()
	if i >= len(c.sent) {
		t.Fatalf("expected at least %d sends, got %d", i+1, len(c.sent))
	}
	msg, ok := c.sent[i].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("send %d is not a MessageConfig: %T", i, c.sent[i])
	}
	return msg.Text
}

type stubRegistration struct {
	err    error
	phones []string
}

func (s *stubRegistration) Register(_ context.Context, phone string, _ int64) error {
	if s.err != nil {
		return s.err
	}
	s.phones = append(s.phones, phone)
	return nil
}

type stubDirectory struct {
	admin    bool
	adminErr error
	links    []domain.Link
}

func (s *stubDirectory) AddAdmin(context.Context, string) error { return nil }
func (s *stubDirectory) IsAdmin(context.Context, string) (bool, error) {
	return s.admin, s.adminErr
}
func (s *stubDirectory) AddLink(context.Context, string, string) (*domain.Link, error) {
	return nil, nil
}
func (s *stubDirectory) ListLinks(context.Context) ([]domain.Link, error) {
	return s.links, nil
}

type stubNotify struct {
	result   domain.DispatchResult
	username string
	image    []byte
	calls    int
}

func (s *stubNotify) HandleCodeImage(_ context.Context, username string, image []byte) domain.DispatchResult {
	s.calls++
	s.username = username
	s.image = image
	return s.result
}

type stubDeduper struct {
	dup     bool
	dupErr  error
	markErr error
	marked  []int
}

func (s *stubDeduper) IsDuplicate(_ context.Context, updateID int) (bool, error) {
	return s.dup, s.dupErr
}

func (s *stubDeduper) Mark(_ context.Context, updateID int) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, updateID)
	return nil
}

func newTestBot(client *stubClient, reg *stubRegistration, notify *stubNotify) *Bot {
	return New(client, reg, &stubDirectory{admin: true}, notify, nil, nil, 1, zerolog.Nop())
}

func textMessage(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 10},
		From: &tgbotapi.User{UserName: "alice"},
	}}
}

func TestBot_HandleText_Registers(t *testing.T) {
	client := &stubClient{}
	reg := &stubRegistration{}
	b := newTestBot(client, reg, &stubNotify{})

	if err := b.handleUpdate(context.Background(), textMessage("0911111111")); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}
	if len(reg.phones) != 1 || reg.phones[0] != "0911111111" {
		t.Fatalf("registration not called correctly: %+v", reg.phones)
	}
	if got := client.textOf(t, 0); got != "Thank you! Your phone number 0911111111 has been registered." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestBot_HandleText_InvalidPhone(t *testing.T) {
	client := &stubClient{}
	reg := &stubRegistration{err: domain.ErrInvalidPhone}
	b := newTestBot(client, reg, &stubNotify{})

	if err := b.handleUpdate(context.Background(), textMessage("09-12")); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}
	if got := client.textOf(t, 0); got != replyInvalidPhone {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestBot_HandleCommand_Start(t *testing.T) {
	client := &stubClient{}
	b := newTestBot(client, &stubRegistration{}, &stubNotify{})

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		Chat:     &tgbotapi.Chat{ID: 10},
	}}
	if err := b.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}
	if got := client.textOf(t, 0); got != replyWelcome {
		t.Fatalf("unexpected welcome: %q", got)
	}
	if got := client.textOf(t, 1); got != replyPhonePrompt {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestBot_HandlePhoto_Outcomes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	cases := []struct {
		name   string
		result domain.DispatchResult
		reply  string
	}{
		{"delivered", domain.DispatchResult{Outcome: domain.OutcomeDelivered, Detail: "0911111111"}, "QR code decoded: 0911111111"},
		{"not found", domain.DispatchResult{Outcome: domain.OutcomeTargetNotFound, Detail: "0922222222"}, "No user found with phone number 0922222222."},
		{"unauthorized", domain.DispatchResult{Outcome: domain.OutcomeDispatchFailed, Detail: domain.DetailUnauthorized}, replyNotAdmin},
		{"no code", domain.DispatchResult{Outcome: domain.OutcomeDispatchFailed, Detail: domain.DetailNoCode}, replyNoCode},
		{"send error", domain.DispatchResult{Outcome: domain.OutcomeDispatchFailed, Detail: "boom"}, "Failed to send message: boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubClient{fileURL: server.URL}
			notify := &stubNotify{result: tc.result}
			b := newTestBot(client, &stubRegistration{}, notify)

			update := tgbotapi.Update{Message: &tgbotapi.Message{
				Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
				Chat:  &tgbotapi.Chat{ID: 10},
				From:  &tgbotapi.User{UserName: "alice"},
			}}
			if err := b.handleUpdate(context.Background(), update); err != nil {
				t.Fatalf("handle update failed: %v", err)
			}
			if notify.calls != 1 {
				t.Fatalf("expected one pipeline invocation, got %d", notify.calls)
			}
			if notify.username != "alice" {
				t.Fatalf("expected sender username, got %q", notify.username)
			}
			if string(notify.image) != "image-bytes" {
				t.Fatalf("downloaded image not passed through: %q", notify.image)
			}
			if got := client.textOf(t, 0); got != tc.reply {
				t.Fatalf("unexpected reply: %q, want %q", got, tc.reply)
			}
		})
	}
}

func TestBot_HandlePhoto_NonAdminSkipsDownload(t *testing.T) {
	var downloads int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&downloads, 1)
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := &stubClient{fileURL: server.URL}
	notify := &stubNotify{}
	b := New(client, &stubRegistration{}, &stubDirectory{admin: false}, notify, nil, nil, 1, zerolog.Nop())

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{{FileID: "large"}},
		Chat:  &tgbotapi.Chat{ID: 10},
		From:  &tgbotapi.User{UserName: "eve"},
	}}
	if err := b.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}
	if n := atomic.LoadInt32(&downloads); n != 0 {
		t.Fatalf("expected no photo download for non-admin, got %d", n)
	}
	if notify.calls != 0 {
		t.Fatalf("expected no pipeline invocation for non-admin, got %d", notify.calls)
	}
	if got := client.textOf(t, 0); got != replyNotAdmin {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestBot_HandlePhoto_AdminCheckErrorDefersToPipeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := &stubClient{fileURL: server.URL}
	notify := &stubNotify{result: domain.DispatchResult{Outcome: domain.OutcomeDispatchFailed, Detail: domain.DetailUnauthorized}}
	dir := &stubDirectory{adminErr: errors.New("store unavailable")}
	b := New(client, &stubRegistration{}, dir, notify, nil, nil, 1, zerolog.Nop())

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{{FileID: "large"}},
		Chat:  &tgbotapi.Chat{ID: 10},
		From:  &tgbotapi.User{UserName: "alice"},
	}}
	if err := b.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle update failed: %v", err)
	}
	if notify.calls != 1 {
		t.Fatalf("pre-check failure must still run the pipeline, got %d calls", notify.calls)
	}
	if got := client.textOf(t, 0); got != replyNotAdmin {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestBot_Dedup_NewUpdateMarked(t *testing.T) {
	dedup := &stubDeduper{}
	b := New(&stubClient{}, &stubRegistration{}, &stubDirectory{}, &stubNotify{}, dedup, nil, 1, zerolog.Nop())

	if b.isDuplicate(context.Background(), 7) {
		t.Fatal("fresh update must not be reported as duplicate")
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != 7 {
		t.Fatalf("expected update 7 marked, got %v", dedup.marked)
	}
}

func TestBot_Dedup_DuplicateSkipped(t *testing.T) {
	dedup := &stubDeduper{dup: true}
	b := New(&stubClient{}, &stubRegistration{}, &stubDirectory{}, &stubNotify{}, dedup, nil, 1, zerolog.Nop())

	if !b.isDuplicate(context.Background(), 7) {
		t.Fatal("redelivered update must be reported as duplicate")
	}
	if len(dedup.marked) != 0 {
		t.Fatalf("duplicate must not be re-marked, got %v", dedup.marked)
	}
}

func TestBot_Dedup_CheckErrorProcessesAnyway(t *testing.T) {
	dedup := &stubDeduper{dupErr: errors.New("redis down")}
	b := New(&stubClient{}, &stubRegistration{}, &stubDirectory{}, &stubNotify{}, dedup, nil, 1, zerolog.Nop())

	if b.isDuplicate(context.Background(), 7) {
		t.Fatal("dedup check failure must not drop the update")
	}
}

func TestBot_Dedup_MarkErrorNonFatal(t *testing.T) {
	dedup := &stubDeduper{markErr: errors.New("redis down")}
	b := New(&stubClient{}, &stubRegistration{}, &stubDirectory{}, &stubNotify{}, dedup, nil, 1, zerolog.Nop())

	if b.isDuplicate(context.Background(), 7) {
		t.Fatal("mark failure must not drop the update")
	}
}

func TestBot_Run_DropsDuplicateBeforeDispatch(t *testing.T) {
	dedup := &stubDeduper{dup: true}
	reg := &stubRegistration{}
	notify := &stubNotify{}
	b := New(&stubClient{}, reg, &stubDirectory{}, notify, dedup, nil, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan tgbotapi.Update, 1)
	update := textMessage("0911111111")
	update.UpdateID = 42
	updates <- update
	close(updates)

	if err := b.Run(ctx, updates); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(reg.phones) != 0 {
		t.Fatalf("duplicate update must not reach the handler, got %v", reg.phones)
	}
	if notify.calls != 0 {
		t.Fatalf("duplicate update must not reach the pipeline, got %d calls", notify.calls)
	}
}

func TestDispatcher_ShardStable(t *testing.T) {
	d := newDispatcher(4, nil, zerolog.Nop())
	first := d.shardIndex(123456)
	for i := 0; i < 10; i++ {
		if d.shardIndex(123456) != first {
			t.Fatalf("shard index must be deterministic per chat")
		}
	}
}
