package relationship

import (
	"errors"

	"socialite/backend/internal/models"

	"gorm.io/gorm"
)

// Failure reasons for rejected transitions. Handlers map these to HTTP
// statuses and machine-readable reason codes.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfRequest        = errors.New("cannot send a request to yourself")
	ErrAlreadyFriends     = errors.New("users are already friends")
	ErrRequestAlreadySent = errors.New("request already sent")
)

// Service is the friend-request state machine. Every mutation touches both
// sides of a pair inside a single transaction, so a concurrent reader never
// observes one side updated and the other not.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SendRequest records a pending friend request from sender to target.
// A reverse pending request (target -> sender) does not block a new request
// and is not auto-reconciled into a friendship; the pair simply holds two
// pending edges until one side accepts.
func (s *Service) SendRequest(senderID, targetID uint) error {
	if senderID == targetID {
		return ErrSelfRequest
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, senderID); err != nil {
			return err
		}
		if err := ensureUserExists(tx, targetID); err != nil {
			return err
		}

		var edge models.RelationEdge
		err := pairScope(tx, senderID, targetID).
			Where("status = ?", models.StatusAccepted).
			First(&edge).Error
		if err == nil {
			return ErrAlreadyFriends
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("from_user_id = ? AND to_user_id = ? AND status = ?",
			senderID, targetID, models.StatusPending).First(&edge).Error
		if err == nil {
			return ErrRequestAlreadySent
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&models.RelationEdge{
			FromUserID: senderID,
			ToUserID:   targetID,
			Status:     models.StatusPending,
		}).Error
	})
}

// AcceptRequest turns the pair (accepter, requester) into friends. It
// succeeds even when no pending request from the requester exists, as long
// as the requester is a real user; any pending edges between the pair, in
// either direction, are cleared so the pair is never pending and friends at
// the same time.
func (s *Service) AcceptRequest(accepterID, requesterID uint) error {
	if accepterID == requesterID {
		return ErrSelfRequest
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, requesterID); err != nil {
			return err
		}

		if err := pairScope(tx, accepterID, requesterID).
			Where("status = ?", models.StatusPending).
			Delete(&models.RelationEdge{}).Error; err != nil {
			return err
		}

		var existing models.RelationEdge
		err := pairScope(tx, accepterID, requesterID).
			Where("status = ?", models.StatusAccepted).
			First(&existing).Error
		if err == nil {
			// Already friends; accepting again is a no-op.
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&models.RelationEdge{
			FromUserID: requesterID,
			ToUserID:   accepterID,
			Status:     models.StatusAccepted,
		}).Error
	})
}

// RemoveOrDecline erases every edge between the pair in both directions.
// This single operation covers unfriending, cancelling a sent request, and
// declining a received one. It is idempotent: removing an already-empty pair
// succeeds and changes nothing.
func (s *Service) RemoveOrDecline(initiatorID, otherID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, otherID); err != nil {
			return err
		}
		return pairScope(tx, initiatorID, otherID).
			Delete(&models.RelationEdge{}).Error
	})
}

// Friends returns the users the given user is friends with.
func (s *Service) Friends(userID uint) ([]models.User, error) {
	var edges []models.RelationEdge
	err := s.db.
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?",
			userID, userID, models.StatusAccepted).
		Preload("FromUser").Preload("ToUser").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		if e.FromUserID == userID {
			users = append(users, e.ToUser)
		} else {
			users = append(users, e.FromUser)
		}
	}
	return users, nil
}

// RequestsSent returns the users the given user has pending requests to.
func (s *Service) RequestsSent(userID uint) ([]models.User, error) {
	var edges []models.RelationEdge
	err := s.db.
		Where("from_user_id = ? AND status = ?", userID, models.StatusPending).
		Preload("ToUser").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		users = append(users, e.ToUser)
	}
	return users, nil
}

// RequestsReceived returns the users with pending requests to the given user.
func (s *Service) RequestsReceived(userID uint) ([]models.User, error) {
	var edges []models.RelationEdge
	err := s.db.
		Where("to_user_id = ? AND status = ?", userID, models.StatusPending).
		Preload("FromUser").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, e := range edges {
		users = append(users, e.FromUser)
	}
	return users, nil
}

// EdgeStatus reports the status of the directed edge from one user to
// another, or nil when no such edge exists.
func (s *Service) EdgeStatus(fromID, toID uint) (*models.RelationStatus, error) {
	var edge models.RelationEdge
	err := s.db.Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge.Status, nil
}

// UserExists reports whether a user with the given ID is known.
func (s *Service) UserExists(userID uint) (bool, error) {
	err := ensureUserExists(s.db, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// pairScope narrows a query to the edges between two users, in either
// direction.
func pairScope(tx *gorm.DB, a, b uint) *gorm.DB {
	return tx.Where(
		"(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		a, b, b, a,
	)
}

func ensureUserExists(tx *gorm.DB, userID uint) error {
	var user models.User
	err := tx.Select("id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
