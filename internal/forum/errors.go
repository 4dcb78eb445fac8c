package forum

import "errors"

var (
	ErrTopicNotFound    = errors.New("topic not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageAuthor = errors.New("not the message author")
)
