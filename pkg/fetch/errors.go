package fetch

import (
	"github.com/kientrucanlac/anlac/pkg/envelope"
)

// DefaultMessage is reported when neither the envelope nor the failure
// itself provides a usable message.
const DefaultMessage = "Something went wrong"

// Error is the single failure representation surfaced by Query and Mutation.
// Transport failures and envelope failures collapse into it; it intentionally
// does not unwrap to the underlying cause.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ResolveMessage picks the user-facing message for a failed producer call.
// Priority: envelope message carried by err > err's own message > DefaultMessage.
func ResolveMessage(err error) string {
	if err == nil {
		return DefaultMessage
	}
	if msg := envelope.MessageOf(err); msg != "" {
		return msg
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultMessage
}

// unwrap converts a producer outcome into either its payload or an *Error.
func unwrap[T any](env *envelope.Envelope[T], err error) (T, *Error) {
	var zero T
	if err != nil {
		return zero, &Error{Message: ResolveMessage(err)}
	}
	if env == nil {
		return zero, &Error{Message: DefaultMessage}
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = DefaultMessage
		}
		return zero, &Error{Message: msg}
	}
	return env.Data, nil
}
