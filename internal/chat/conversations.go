package chat

import (
	"errors"

	"socialite/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Directory finds or creates the single conversation for an unordered pair
// of users.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// GetOrCreate returns the conversation between the two users, creating it on
// first use. The participant pair is normalized before the insert, and the
// insert rides on the unique pair index: if a concurrent first message
// already created the row, the conflicting insert is dropped and the existing
// row is reselected, so two racing callers converge on the same conversation.
func (d *Directory) GetOrCreate(userA, userB uint) (*models.Conversation, error) {
	a, b := normalizePair(userA, userB)

	conv := models.Conversation{UserAID: a, UserBID: b}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&conv).Error
	if err != nil {
		return nil, err
	}

	if conv.ID != 0 {
		return &conv, nil
	}

	// Lost the race; another caller created the conversation first.
	if err := d.db.Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Lookup returns the conversation for the pair without creating one.
func (d *Directory) Lookup(userA, userB uint) (*models.Conversation, error) {
	a, b := normalizePair(userA, userB)

	var conv models.Conversation
	err := d.db.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func normalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
