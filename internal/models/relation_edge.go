package models

import "time"

// RelationStatus defines the state of a relationship edge between two users.
type RelationStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending RelationStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	StatusAccepted RelationStatus = "accepted"
)

// RelationEdge represents the relationship between two users. A pending edge
// runs from the requester to the requested user; an accepted edge is stored
// once, in the direction the original request travelled, and is read as
// undirected. The composite primary key (FromUserID, ToUserID) ensures a
// direction can hold at most one edge.
type RelationEdge struct {
	FromUserID uint           `gorm:"primaryKey"`
	ToUserID   uint           `gorm:"primaryKey"`
	Status     RelationStatus `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
