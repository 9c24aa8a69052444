package store

import (
	"github.com/gcammarata/wirechat/pkg/models"
)

// AddUser registers a new account. The username is trimmed first; an empty
// result or an existing account fails.
func (s *Store) AddUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uname := trim(username)
	if uname == "" {
		return models.ErrEmptyUsername
	}
	if err := s.db.Create(&models.Account{Username: uname, Password: password}).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateUser
		}
		return err
	}
	return nil
}

// VerifyUser checks the stored credentials. Passwords are opaque bytes
// compared exactly; there is no hashing on this wire protocol.
func (s *Store) VerifyUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uname := trim(username)
	if uname == "" {
		return models.ErrBadCredential
	}
	var account models.Account
	if err := s.db.Where("username = ?", uname).First(&account).Error; err != nil {
		return convertNotFoundError(err, models.ErrBadCredential)
	}
	if account.Password != password {
		return models.ErrBadCredential
	}
	return nil
}

// ChangePassword replaces the stored password. Fails when the account does
// not exist.
func (s *Store) ChangePassword(username, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uname := trim(username)
	if uname == "" {
		return models.ErrUserNotFound
	}
	result := s.db.Model(&models.Account{}).
		Where("username = ?", uname).
		Update("password", newPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account together with its friendship edges and group
// memberships. Persisted messages are kept as archival history. Groups the
// user owned survive with their remaining members.
func (s *Store) DeleteUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uname := trim(username)
	if uname == "" {
		return models.ErrUserNotFound
	}

	result := s.db.Where("username = ?", uname).Delete(&models.Account{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}

	if err := s.db.Where("user = ? OR friend = ?", uname, uname).
		Delete(&models.FriendEdge{}).Error; err != nil {
		return err
	}
	return s.db.Where("member = ?", uname).Delete(&models.GroupMember{}).Error
}

// UserExists reports whether an account with the given name is registered.
func (s *Store) UserExists(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.Model(&models.Account{}).Where("username = ?", trim(username)).Count(&count).Error
	return count > 0, err
}

// FriendStatus classifies the relationship of other as seen by viewer:
// self, friend, outgoing, incoming, or none.
func (s *Store) FriendStatus(viewer, other string) (models.FriendStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friendStatus(viewer, other)
}

// friendStatus probes both edge directions. Callers hold s.mu.
func (s *Store) friendStatus(viewer, other string) (models.FriendStatus, error) {
	if viewer == other {
		return models.StatusSelf, nil
	}

	var edges []models.FriendEdge
	err := s.db.Where("(user = ? AND friend = ?) OR (user = ? AND friend = ?)",
		viewer, other, other, viewer).Find(&edges).Error
	if err != nil {
		return models.StatusNone, err
	}

	for _, e := range edges {
		if e.Status == models.EdgeAccepted {
			return models.StatusFriend, nil
		}
	}
	for _, e := range edges {
		if e.Status != models.EdgePending {
			continue
		}
		if e.Owner == viewer {
			return models.StatusOutgoing, nil
		}
		return models.StatusIncoming, nil
	}
	return models.StatusNone, nil
}

// ListAllUsersWithStatus returns every registered account in alphabetical
// order, each annotated with its friendship status relative to the viewer.
func (s *Store) ListAllUsersWithStatus(viewer string) ([]models.UserStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []models.Account
	if err := s.db.Order("username ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}

	out := make([]models.UserStatus, 0, len(accounts))
	for _, a := range accounts {
		status, err := s.friendStatus(viewer, a.Username)
		if err != nil {
			return nil, err
		}
		out = append(out, models.UserStatus{Name: a.Username, Status: status})
	}
	return out, nil
}
