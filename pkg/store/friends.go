package store

import (
	"gorm.io/gorm/clause"

	"github.com/gcammarata/wirechat/pkg/models"
)

// SendFriendRequest inserts or replaces the directed edge (from, to, pending).
// It is idempotent and deliberately does not check that the target account
// exists, matching the historical contract the deployed clients rely on.
func (s *Store) SendFriendRequest(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ufrom, uto := trim(from), trim(to)
	if ufrom == "" || uto == "" {
		return models.ErrEmptyUsername
	}
	edge := models.FriendEdge{Owner: ufrom, Other: uto, Status: models.EdgePending}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&edge).Error
}

// AcceptFriendRequest resolves a pending request from -> to. It succeeds only
// when that pending edge exists, then writes both accepted mirror edges.
func (s *Store) AcceptFriendRequest(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ufrom, uto := trim(from), trim(to)
	if ufrom == "" || uto == "" {
		return models.ErrEmptyUsername
	}

	var pending models.FriendEdge
	err := s.db.Where("user = ? AND friend = ? AND status = ?",
		ufrom, uto, models.EdgePending).First(&pending).Error
	if err != nil {
		return convertNotFoundError(err, models.ErrNoPendingRequest)
	}

	for _, edge := range []models.FriendEdge{
		{Owner: ufrom, Other: uto, Status: models.EdgeAccepted},
		{Owner: uto, Other: ufrom, Status: models.EdgeAccepted},
	} {
		if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&edge).Error; err != nil {
			return err
		}
	}
	return nil
}

// RefuseFriendRequest deletes the pending edge from -> to. Fails when no such
// pending request exists.
func (s *Store) RefuseFriendRequest(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Where("user = ? AND friend = ? AND status = ?",
		trim(from), trim(to), models.EdgePending).Delete(&models.FriendEdge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNoPendingRequest
	}
	return nil
}

// RemoveFriend deletes both edge directions between a and b. Removing a
// relationship that does not exist is not an error.
func (s *Store) RemoveFriend(a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ua, ub := trim(a), trim(b)
	if ua == "" || ub == "" {
		return models.ErrEmptyUsername
	}
	return s.db.Where("(user = ? AND friend = ?) OR (user = ? AND friend = ?)",
		ua, ub, ub, ua).Delete(&models.FriendEdge{}).Error
}

// AreFriends reports whether an accepted edge exists in either direction.
func (s *Store) AreFriends(a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.Model(&models.FriendEdge{}).
		Where("((user = ? AND friend = ?) OR (user = ? AND friend = ?)) AND status = ?",
			trim(a), trim(b), trim(b), trim(a), models.EdgeAccepted).
		Count(&count).Error
	return count > 0, err
}

// ListFriends returns the caller's annotated friend list: accepted edges,
// outgoing pending requests (tagged "outgoing"), and incoming pending
// requests (tagged "pending"), alphabetically by peer name. The Online flag
// of every entry is left false here; the caller stamps it from the session
// roster after this call returns, so the store lock is never held while the
// roster is consulted.
func (s *Store) ListFriends(user string) ([]models.FriendEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uname := trim(user)
	if uname == "" {
		return nil, models.ErrEmptyUsername
	}

	var owned []models.FriendEdge
	if err := s.db.Where("user = ?", uname).Order("friend ASC").Find(&owned).Error; err != nil {
		return nil, err
	}
	var incoming []models.FriendEdge
	err := s.db.Where("friend = ? AND status = ?", uname, models.EdgePending).
		Order("user ASC").Find(&incoming).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.FriendEntry, 0, len(owned)+len(incoming))
	for _, e := range owned {
		status := "accepted"
		if e.Status == models.EdgePending {
			status = "outgoing"
		}
		entries = append(entries, models.FriendEntry{Name: e.Other, Status: status})
	}
	for _, e := range incoming {
		entries = append(entries, models.FriendEntry{Name: e.Owner, Status: "pending"})
	}
	return entries, nil
}
