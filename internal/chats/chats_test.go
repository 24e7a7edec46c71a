package chats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/studybuddy/internal/chats"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository/mock"
)

func TestStartOrGetFromEitherSide(t *testing.T) {
	store := mock.New()
	reg := chats.New(store, nil)
	ctx := context.Background()

	first, err := reg.StartOrGet(ctx, "u-b", "u-a", "Bob", "Alice")
	if err != nil {
		t.Fatalf("StartOrGet: %v", err)
	}
	if first.ParticipantsID != [2]string{"u-a", "u-b"} {
		t.Fatalf("expected sorted pair, got %v", first.ParticipantsID)
	}

	second, err := reg.StartOrGet(ctx, "u-a", "u-b", "Alice", "Bob")
	if err != nil {
		t.Fatalf("StartOrGet: %v", err)
	}
	if second.ChatID != first.ChatID {
		t.Fatalf("expected the same chat, got %d and %d", first.ChatID, second.ChatID)
	}
	if store.ChatCount() != 1 {
		t.Fatalf("expected exactly one chat row, got %d", store.ChatCount())
	}
	if second.SenderName != "Alice" || second.ReceiverName != "Bob" {
		t.Fatalf("expected names from the latest call, got %#v", second)
	}
}

func TestStartOrGetErrors(t *testing.T) {
	store := mock.New()
	reg := chats.New(store, nil)
	ctx := context.Background()

	if _, err := reg.StartOrGet(ctx, "u-a", "u-a", "A", "A"); !errorx.Is(err, errorx.KindValidation) {
		t.Fatalf("expected validation error for self chat, got %v", err)
	}
	if _, err := reg.StartOrGet(ctx, "u-a", "", "A", ""); !errorx.Is(err, errorx.KindValidation) {
		t.Fatalf("expected validation error for missing counterpart, got %v", err)
	}

	store.UpsertErr = errors.New("db down")
	if _, err := reg.StartOrGet(ctx, "u-a", "u-b", "A", "B"); !errorx.Is(err, errorx.KindQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestStartUsesProfileNames(t *testing.T) {
	store := mock.New()
	ctx := context.Background()
	for _, p := range []models.UserProfile{{UserID: "u-a", Name: "Alice"}, {UserID: "u-b", Name: "Bob"}} {
		p := p
		if _, err := store.UpsertProfile(ctx, &p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	reg := chats.New(store, nil)

	c, err := reg.Start(ctx, "u-b", "u-a")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.SenderName != "Bob" || c.ReceiverName != "Alice" {
		t.Fatalf("unexpected names %#v", c)
	}

	if _, err := reg.Start(ctx, "u-a", "ghost"); !errorx.Is(err, errorx.KindNotFound) {
		t.Fatalf("expected not found for unknown counterpart, got %v", err)
	}
	if _, err := reg.Start(ctx, "nobody", "u-a"); !errorx.Is(err, errorx.KindValidation) {
		t.Fatalf("expected validation error without own profile, got %v", err)
	}
}

func TestGetForAndCounterpart(t *testing.T) {
	store := mock.New()
	ctx := context.Background()
	if _, err := store.UpsertProfile(ctx, &models.UserProfile{UserID: "u-b", Name: "Bob", Major: "CS"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reg := chats.New(store, nil)
	c, err := reg.StartOrGet(ctx, "u-a", "u-b", "Alice", "Bob")
	if err != nil {
		t.Fatalf("StartOrGet: %v", err)
	}

	if _, err := reg.GetFor(ctx, c.ChatID, "u-z"); !errorx.Is(err, errorx.KindForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	if _, err := reg.Get(ctx, 999); !errorx.Is(err, errorx.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	p, err := reg.Counterpart(ctx, c.ChatID, "u-a")
	if err != nil {
		t.Fatalf("Counterpart: %v", err)
	}
	if p.UserID != "u-b" {
		t.Fatalf("expected u-b, got %s", p.UserID)
	}

	if _, err := reg.Counterpart(ctx, c.ChatID, "u-b"); !errorx.Is(err, errorx.KindNotFound) {
		t.Fatalf("expected not found for missing profile, got %v", err)
	}
}

func TestList(t *testing.T) {
	store := mock.New()
	reg := chats.New(store, nil)
	ctx := context.Background()

	empty, err := reg.List(ctx, "u-a")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v, %v", empty, err)
	}

	for _, other := range []string{"u-b", "u-c"} {
		if _, err := reg.StartOrGet(ctx, "u-a", other, "A", other); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := reg.StartOrGet(ctx, "u-b", "u-c", "B", "C"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := reg.List(ctx, "u-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(got))
	}

	store.ListErr = errors.New("db down")
	if _, err := reg.List(ctx, "u-a"); !errorx.Is(err, errorx.KindQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestResolveAndDisplay(t *testing.T) {
	c := &models.Chat{ParticipantsID: [2]string{"u-a", "u-b"}, SenderName: "Alice", ReceiverName: "Bob"}

	if got := chats.ResolveCounterpart(c, "u-a"); got != "u-b" {
		t.Fatalf("expected u-b, got %s", got)
	}
	if got := chats.ResolveCounterpart(c, "u-b"); got != "u-a" {
		t.Fatalf("expected u-a, got %s", got)
	}

	cases := []struct {
		viewer string
		want   string
	}{
		{viewer: "Alice", want: "Bob"},
		{viewer: "Bob", want: "Alice"},
		{viewer: "Someone", want: "Alice"},
	}
	for _, tc := range cases {
		if got := chats.DisplayName(c, tc.viewer); got != tc.want {
			t.Fatalf("DisplayName(%q) = %q, want %q", tc.viewer, got, tc.want)
		}
	}
}

func TestFilter(t *testing.T) {
	list := []models.Chat{
		{ChatID: 1, SenderName: "Me", ReceiverName: "Alice"},
		{ChatID: 2, SenderName: "Bob", ReceiverName: "Me"},
		{ChatID: 3, SenderName: "Me", ReceiverName: "Carol"},
	}

	if got := chats.Filter(list, "Me", ""); len(got) != 3 {
		t.Fatalf("expected all chats for empty query, got %d", len(got))
	}
	got := chats.Filter(list, "Me", "BO")
	if len(got) != 1 || got[0].ChatID != 2 {
		t.Fatalf("unexpected filter result %#v", got)
	}
	if got := chats.Filter(list, "Me", "zzz"); len(got) != 0 {
		t.Fatalf("expected no chats, got %#v", got)
	}
}

func TestCanonicalPair(t *testing.T) {
	if got := chats.CanonicalPair("b", "a"); got != [2]string{"a", "b"} {
		t.Fatalf("unexpected pair %v", got)
	}
	if got := chats.CanonicalPair("a", "b"); got != [2]string{"a", "b"} {
		t.Fatalf("unexpected pair %v", got)
	}
}
