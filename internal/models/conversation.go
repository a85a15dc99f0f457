package models

import "gorm.io/gorm"

// Conversation groups all messages ever exchanged between one unordered pair
// of users. The participants are stored normalized (UserAID < UserBID) so a
// unique index on the pair guarantees at most one conversation per pair.
type Conversation struct {
	gorm.Model
	UserAID uint `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserBID uint `gorm:"not null;uniqueIndex:idx_conversation_pair"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}
