package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("username or email already taken")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrEventNotFound    = errors.New("event not found")
	ErrItemNotFound     = errors.New("inbox item not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrNotOwner         = errors.New("resource belongs to another user")
)
