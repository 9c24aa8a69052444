package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gcammarata/wirechat/pkg/models"
)

// CreateGroup creates a named group and enrolls the owner as its first
// member. Fails when the name is empty after trimming or already taken.
func (s *Store) CreateGroup(name, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gname := trim(name)
	if gname == "" {
		return models.ErrEmptyGroupName
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Group{Name: gname, Owner: trim(owner)}).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupName: gname, Member: trim(owner)}).Error
	})
	if isUniqueConstraintError(err) {
		return models.ErrDuplicateGroup
	}
	return err
}

// AddUserToGroup enrolls user in the group. Fails when the group does not
// exist; adding an existing member is a no-op.
func (s *Store) AddUserToGroup(group, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gname := trim(group)
	var g models.Group
	if err := s.db.Where("name = ?", gname).First(&g).Error; err != nil {
		return convertNotFoundError(err, models.ErrGroupNotFound)
	}

	member := models.GroupMember{GroupName: gname, Member: trim(user)}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}

// RemoveUserFromGroup deletes the membership row. Fails when no such row
// exists. Leaving a group is the same operation applied to oneself.
func (s *Store) RemoveUserFromGroup(group, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Where("group_name = ? AND member = ?", trim(group), trim(user)).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotAMember
	}
	return nil
}

// IsMemberOfGroup reports current membership.
func (s *Store) IsMemberOfGroup(group, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.Model(&models.GroupMember{}).
		Where("group_name = ? AND member = ?", trim(group), trim(user)).
		Count(&count).Error
	return count > 0, err
}

// ListGroupsForUser returns the groups user belongs to, alphabetically.
func (s *Store) ListGroupsForUser(user string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	err := s.db.Model(&models.GroupMember{}).
		Where("member = ?", trim(user)).
		Order("group_name ASC").
		Pluck("group_name", &names).Error
	return names, err
}

// ListGroupMembers returns the group's members, alphabetically.
func (s *Store) ListGroupMembers(group string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	err := s.db.Model(&models.GroupMember{}).
		Where("group_name = ?", trim(group)).
		Order("member ASC").
		Pluck("member", &names).Error
	return names, err
}
