package storage

import "errors"

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrUserNotFound         = errors.New("user with this id does not found")
	ErrConversationNotFound = errors.New("conversation with this id does not found")
	ErrMessageNotFound      = errors.New("message with this id does not found")
)
