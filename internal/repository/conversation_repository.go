// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConversationNotFound 表示给定的对话 ID 在数据库中不存在。
var ErrConversationNotFound = errors.New("repository: conversation not found")

// ConversationRepository 定义了对话及其消息的持久化操作。
type ConversationRepository interface {
	// GetOrCreate 按 sessionID 解析对话并返回其有序消息历史。
	// sessionID 为空或无法解析时创建一个全新的空对话，从不视为错误。
	GetOrCreate(ctx context.Context, sessionID string) (*model.Conversation, []model.Message, error)
	// Append 向对话追加一条消息，对话不存在时返回 ErrConversationNotFound。
	Append(ctx context.Context, conversationID, sender, text string) (*model.Message, error)
	// History 返回对话的全部消息，按创建顺序从旧到新；无消息时返回空切片。
	History(ctx context.Context, conversationID string) ([]model.Message, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate 按 sessionID 获取对话，不存在则新建。
func (r *conversationRepository) GetOrCreate(ctx context.Context, sessionID string) (*model.Conversation, []model.Message, error) {
	if sessionID != "" {
		var conv model.Conversation
		err := r.db.WithContext(ctx).First(&conv, "id = ?", sessionID).Error
		if err == nil {
			history, herr := r.History(ctx, conv.ID)
			if herr != nil {
				return nil, nil, herr
			}
			return &conv, history, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("failed to query conversation: %w", err)
		}
		// 未知的 sessionID 按"开始新会话"处理
	}

	conv := model.Conversation{ID: uuid.NewString()}
	if err := r.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, []model.Message{}, nil
}

// Append 追加一条消息并刷新对话的更新时间。
func (r *conversationRepository) Append(ctx context.Context, conversationID, sender, text string) (*model.Message, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	msg := model.Message{
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&conv).Update("updated_at", msg.CreatedAt).Error; err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}
	return &msg, nil
}

// History 按创建顺序返回消息，ID 自增用于同一时刻的次序。
func (r *conversationRepository) History(ctx context.Context, conversationID string) ([]model.Message, error) {
	messages := []model.Message{}
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return messages, nil
}
