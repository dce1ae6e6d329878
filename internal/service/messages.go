package service

import (
	"errors"
	"io/fs"
	"strings"

	"talkdocs/internal/domain"
)

// UserMessage maps an operation failure to the text shown at an interactive
// boundary. Validation and empty-document failures are shown as is; a file
// that cannot be read is named. Anything else gets a generic message and
// should be logged by the caller.
func UserMessage(err error, action string) string {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrValidation):
		return detail(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrEmptyDocument):
		return detail(err, domain.ErrEmptyDocument)
	case errors.Is(err, domain.ErrGeneration):
		return "Sorry, something went wrong while generating the answer. Please try again."
	case errors.Is(err, domain.ErrConfiguration):
		return "Failed to " + action + ": the application is not configured correctly. See logs for details."
	case errors.As(err, &pathErr):
		return "Cannot read " + pathErr.Path + ": " + pathErr.Err.Error()
	default:
		return "Failed to " + action + ". See logs for details."
	}
}

// detail returns the text that follows the sentinel in err's message.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
