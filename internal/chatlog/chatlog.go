// Package chatlog persists studio chat durably. The coordinator treats it as
// fire-and-forget: a failed insert is logged and never blocks or fails
// message routing.
package chatlog

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

const saveTimeout = 5 * time.Second

// Store is the durable sink for chat messages.
type Store interface {
	Save(msg types.ChatMessage)
}

// Record is the persisted row shape.
type Record struct {
	ID        string `gorm:"primaryKey;size:64"`
	Studio    string `gorm:"size:8;index"`
	Sender    string `gorm:"size:128"`
	Role      string `gorm:"size:16"`
	Content   string
	CreatedAt time.Time
}

func (Record) TableName() string { return "chat_messages" }

// GormStore writes chat messages to Postgres.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to Postgres and migrates the chat table.
func Open(dsn string, log *zap.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, log: log}, nil
}

// Save inserts asynchronously. The caller returns immediately.
func (s *GormStore) Save(msg types.ChatMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		rec := Record{
			ID:        msg.ID,
			Studio:    string(msg.Studio),
			Sender:    msg.Sender,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.SentAt,
		}
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			s.log.Warn("chat message not persisted",
				zap.String("id", msg.ID), zap.Error(err))
		}
	}()
}

// Nop discards every message. Used when no DSN is configured.
type Nop struct{}

func (Nop) Save(types.ChatMessage) {}
