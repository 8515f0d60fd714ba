package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) ConversationRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewConversationRepository(db)
}

func TestGetOrCreate_EmptySessionCreatesFreshConversation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, history, err := repo.GetOrCreate(ctx, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected a generated conversation id")
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}
}

func TestGetOrCreate_UnknownSessionIsNotAnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, history, err := repo.GetOrCreate(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if conv.ID == "no-such-id" {
		t.Fatal("expected a fresh conversation id, not the unknown one")
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}
}

func TestGetOrCreate_ExistingSessionReturnsHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, _, err := repo.GetOrCreate(ctx, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := repo.Append(ctx, conv.ID, model.SenderUser, "hello"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := repo.Append(ctx, conv.ID, model.SenderAI, "hi there"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	again, history, err := repo.GetOrCreate(ctx, conv.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if again.ID != conv.ID {
		t.Fatalf("expected stable conversation id, got %s", again.ID)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Sender != model.SenderUser || history[1].Sender != model.SenderAI {
		t.Fatalf("unexpected senders: %s, %s", history[0].Sender, history[1].Sender)
	}
}

func TestAppend_UnknownConversation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Append(context.Background(), "no-such-id", model.SenderUser, "hello")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestHistory_PreservesCreationOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, _, err := repo.GetOrCreate(ctx, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 0; i < 10; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAI
		}
		if _, err := repo.Append(ctx, conv.ID, sender, fmt.Sprintf("turn %d", i)); err != nil {
			t.Fatalf("append %d: unexpected err: %v", i, err)
		}
	}

	history, err := repo.History(ctx, conv.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(history))
	}
	for i, m := range history {
		if m.Text != fmt.Sprintf("turn %d", i) {
			t.Fatalf("message %d out of order: %q", i, m.Text)
		}
	}
}

func TestHistory_EmptyForConversationWithoutMessages(t *testing.T) {
	repo := newTestRepo(t)

	history, err := repo.History(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", history)
	}
}
