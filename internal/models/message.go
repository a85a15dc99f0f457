package models

import "gorm.io/gorm"

// Message is a single chat message within a conversation. Messages are
// immutable once created: no edits, no deletes.
type Message struct {
	gorm.Model
	ConversationID uint   `gorm:"not null;index"`
	SenderID       uint   `gorm:"not null"`
	ReceiverID     uint   `gorm:"not null"`
	Content        string `gorm:"not null"`

	Sender   User `gorm:"foreignKey:SenderID"`
	Receiver User `gorm:"foreignKey:ReceiverID"`
}
