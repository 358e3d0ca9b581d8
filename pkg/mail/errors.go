package mail

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown mail provider")
	ErrNoRecipients    = errors.New("no recipients")
	ErrNoSender        = errors.New("no from address")
	ErrMissingAPIKey   = errors.New("missing api key")
	ErrRejected        = errors.New("rejected by provider")
)
