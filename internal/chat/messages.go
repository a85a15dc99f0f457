package chat

import (
	"errors"

	"socialite/backend/internal/models"

	"gorm.io/gorm"
)

// ErrConversationNotFound is returned when a message references an unknown
// conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// Log is the append-only message store. Messages keep their creation order
// within a conversation; nothing here reorders, edits, or deletes them.
type Log struct {
	db *gorm.DB
}

func NewLog(db *gorm.DB) *Log {
	return &Log{db: db}
}

// Append persists a new message in the given conversation and returns it.
func (l *Log) Append(conversationID, senderID, receiverID uint, content string) (*models.Message, error) {
	var msg *models.Message
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		err := tx.Select("id").First(&conv, conversationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		if err != nil {
			return err
		}

		msg = &models.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Content:        content,
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns every message in the conversation in creation order.
func (l *Log) History(conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := l.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
