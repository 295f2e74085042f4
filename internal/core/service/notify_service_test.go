package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

type stubDecoder struct {
	payload string
	found   bool
	calls   int
}

func (d *stubDecoder) Decode(_ []byte) (string, bool) {
	d.calls++
	return d.payload, d.found
}

type stubNotifier struct {
	err   error
	block bool
	sends []struct {
		chatID int64
		text   string
	}
}

func (n *stubNotifier) Send(ctx context.Context, chatID int64, text string) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.sends = append(n.sends, struct {
		chatID int64
		text   string
	}{chatID, text})
	return n.err
}

func newNotifyFixture(admins *stubAdminRepo, identities *stubIdentityRepo, dec *stubDecoder, not *stubNotifier) ports.NotifyService {
	gate := NewDirectoryService(admins, &stubLinkRepo{}, zerolog.Nop())
	return NewNotifyService(gate, identities, dec, not, "Hello, I am your bot!", time.Second, zerolog.Nop())
}

func TestNotifyService_Unauthorized_ShortCircuits(t *testing.T) {
	identities := newStubIdentityRepo()
	_ = identities.Upsert(context.Background(), domain.Identity{Phone: "0911111111", ChatID: 42})
	dec := &stubDecoder{payload: "0911111111", found: true}
	not := &stubNotifier{}
	svc := newNotifyFixture(newStubAdminRepo("alice"), identities, dec, not)

	res := svc.HandleCodeImage(context.Background(), "eve", []byte("img"))
	if res.Outcome != domain.OutcomeDispatchFailed || res.Detail != domain.DetailUnauthorized {
		t.Fatalf("unexpected result: %+v", res)
	}
	if dec.calls != 0 {
		t.Fatalf("decoder must not run for non-admins, ran %d times", dec.calls)
	}
	if len(not.sends) != 0 {
		t.Fatalf("no message may be sent for non-admins")
	}
}

func TestNotifyService_Delivered_ExactlyOneSend(t *testing.T) {
	identities := newStubIdentityRepo()
	_ = identities.Upsert(context.Background(), domain.Identity{Phone: "0911111111", ChatID: 42})
	dec := &stubDecoder{payload: "0911111111", found: true}
	not := &stubNotifier{}
	svc := newNotifyFixture(newStubAdminRepo("alice"), identities, dec, not)

	res := svc.HandleCodeImage(context.Background(), "alice", []byte("img"))
	if res.Outcome != domain.OutcomeDelivered {
		t.Fatalf("expected delivered, got %+v", res)
	}
	if res.Detail != "0911111111" {
		t.Fatalf("expected decoded payload as detail, got %q", res.Detail)
	}
	if len(not.sends) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(not.sends))
	}
	if not.sends[0].chatID != 42 || not.sends[0].text != "Hello, I am your bot!" {
		t.Fatalf("unexpected send: %+v", not.sends[0])
	}
}

func TestNotifyService_NoCodeFound(t *testing.T) {
	identities := newStubIdentityRepo()
	_ = identities.Upsert(context.Background(), domain.Identity{Phone: "0911111111", ChatID: 42})
	dec := &stubDecoder{found: false}
	not := &stubNotifier{}
	svc := newNotifyFixture(newStubAdminRepo("alice"), identities, dec, not)

	res := svc.HandleCodeImage(context.Background(), "alice", []byte("not an image"))
	if res.Outcome != domain.OutcomeDispatchFailed || res.Detail != domain.DetailNoCode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(not.sends) != 0 {
		t.Fatalf("no message may be sent without a decoded code")
	}
}

func TestNotifyService_TargetNotFound(t *testing.T) {
	dec := &stubDecoder{payload: "0999999999", found: true}
	not := &stubNotifier{}
	svc := newNotifyFixture(newStubAdminRepo("alice"), newStubIdentityRepo(), dec, not)

	res := svc.HandleCodeImage(context.Background(), "alice", []byte("img"))
	if res.Outcome != domain.OutcomeTargetNotFound {
		t.Fatalf("expected target not found, got %+v", res)
	}
	if res.Detail != "0999999999" {
		t.Fatalf("detail must surface the decoded payload, got %q", res.Detail)
	}
	if len(not.sends) != 0 {
		t.Fatalf("no message may be sent on a lookup miss")
	}
}

func TestNotifyService_SendFailure(t *testing.T) {
	identities := newStubIdentityRepo()
	_ = identities.Upsert(context.Background(), domain.Identity{Phone: "0911111111", ChatID: 42})
	dec := &stubDecoder{payload: "0911111111", found: true}
	not := &stubNotifier{err: errors.New("bot was blocked by the user")}
	svc := newNotifyFixture(newStubAdminRepo("alice"), identities, dec, not)

	res := svc.HandleCodeImage(context.Background(), "alice", []byte("img"))
	if res.Outcome != domain.OutcomeDispatchFailed {
		t.Fatalf("expected dispatch failed, got %+v", res)
	}
	if res.Detail != "bot was blocked by the user" {
		t.Fatalf("expected transport error detail, got %q", res.Detail)
	}
	if len(not.sends) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(not.sends))
	}
}

func TestNotifyService_SendTimeout(t *testing.T) {
	identities := newStubIdentityRepo()
	_ = identities.Upsert(context.Background(), domain.Identity{Phone: "0911111111", ChatID: 42})
	dec := &stubDecoder{payload: "0911111111", found: true}
	not := &stubNotifier{block: true}

	gate := NewDirectoryService(newStubAdminRepo("alice"), &stubLinkRepo{}, zerolog.Nop())
	svc := NewNotifyService(gate, identities, dec, not, "hi", 10*time.Millisecond, zerolog.Nop())

	res := svc.HandleCodeImage(context.Background(), "alice", []byte("img"))
	if res.Outcome != domain.OutcomeDispatchFailed {
		t.Fatalf("expected dispatch failed on timeout, got %+v", res)
	}
}
