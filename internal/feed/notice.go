package feed

import (
	"github.com/anonto42/kratos-hub/backend/internal/gateway"
)

// NoticeLevel grades a user-facing notice
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarning:
		return "warning"
	default:
		return "error"
	}
}

// StaleMessage is shown when an action targets a post that is gone
const StaleMessage = "This post is no longer available."

// Notice is a transient, non-blocking message for the user
type Notice struct {
	Level     NoticeLevel
	Message   string
	Retryable bool
	PostID    string
}

// Notifier surfaces notices to the user
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// NoticeFor maps a failed action to the notice shown for it
func NoticeFor(err error) Notice {
	re, ok := gateway.AsRequestError(err)
	if !ok {
		return Notice{Level: NoticeWarning, Message: gateway.TransportMessage, Retryable: true}
	}
	switch re.Kind {
	case gateway.KindStale:
		return Notice{Level: NoticeInfo, Message: StaleMessage}
	case gateway.KindApplication:
		return Notice{Level: NoticeError, Message: re.Message}
	default:
		return Notice{Level: NoticeWarning, Message: re.Message, Retryable: true}
	}
}

// IsStale reports whether err means the target no longer exists server-side
func IsStale(err error) bool {
	re, ok := gateway.AsRequestError(err)
	return ok && re.Kind == gateway.KindStale
}
