// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 消息发送方的取值。
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Conversation 代表一个持久化的对话会话。
// ID 是不透明的 UUID，同时作为客户端持有的 sessionId 使用。
type Conversation struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message 代表对话中的一条不可变消息。
// 同一对话内按创建时间（ID 自增作为同时刻的次序）全序排列。
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;index" json:"conversationId"`
	Sender         string    `gorm:"type:varchar(10);not null" json:"sender"` // "user" 或 "ai"
	Text           string    `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Conversation Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// ChatMessage 是发送给 LLM 的单条角色消息。
type ChatMessage struct {
	Role    string `json:"role"` // "system"、"user" 或 "assistant"
	Content string `json:"content"`
}
