package command

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrIndex          = errors.New("index out of range")
	ErrDateFormat     = errors.New("date format")
	ErrDuplicate      = errors.New("duplicate task")
)

// ReplyError carries the sentence shown to the user for a rejected command.
// It satisfies errors.Is(err, Kind).
type ReplyError struct {
	Kind    error
	Message string
}

func (e *ReplyError) Error() string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return "Invalid Command!"
	}
	return e.Message
}

func (e *ReplyError) Is(target error) bool {
	return e != nil && target == e.Kind
}

func reject(kind error, msg string) error {
	return &ReplyError{Kind: kind, Message: msg}
}
