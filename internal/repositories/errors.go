package repositories

import "errors"

var (
	ErrEmptyPayload         = errors.New("empty payload")
	ErrNotRecipient         = errors.New("reader is not the recipient")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)
