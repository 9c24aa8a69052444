package models

import "errors"

// Domain errors surfaced by the persistence store. Handlers map any of
// these to the wire-level failure byte; they are never propagated out of a
// session task.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrEmptyUsername = errors.New("username is empty")
	ErrBadCredential = errors.New("invalid credentials")

	ErrNoPendingRequest = errors.New("no pending friend request")

	ErrGroupNotFound  = errors.New("group not found")
	ErrDuplicateGroup = errors.New("group already exists")
	ErrEmptyGroupName = errors.New("group name is empty")
	ErrNotAMember     = errors.New("not a member of the group")
)
