package client

import (
	"errors"

	"github.com/rs/zerolog/log"
)

const msgGenericFailure = "حدث خطأ غير متوقع"

// Notifier receives exactly one outcome per mutation.
type Notifier interface {
	Success(action, message string)
	Failure(action string, err error)
}

// LogNotifier reports outcomes through the global logger.
type LogNotifier struct{}

func (LogNotifier) Success(action, message string) {
	log.Info().Str("action", action).Msg(message)
}

func (LogNotifier) Failure(action string, err error) {
	log.Error().Err(err).Str("action", action).Msg(FailureMessage(err))
}

// FailureMessage prefers the server's own wording when there is one.
func FailureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgGenericFailure
}
