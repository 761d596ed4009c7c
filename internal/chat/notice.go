package chat

import (
	"errors"
	"net/http"

	"taskdeck/internal/api"
)

// Notice is the shared error banner shown above the chat input.
type Notice struct {
	Kind       api.ErrorKind
	Message    string
	Guidance   string
	RetryLabel string
}

const (
	genericGuidance = "Please try again or contact support if the problem persists."
	genericRetry    = "Try Again"
)

// NewNotice classifies err by kind. Errors that are not *api.Error get generic guidance.
func NewNotice(err error) Notice {
	var ae *api.Error
	if !errors.As(err, &ae) {
		msg := "An error occurred"
		if err != nil {
			msg = err.Error()
		}
		return Notice{Message: msg, Guidance: genericGuidance, RetryLabel: genericRetry}
	}
	n := Notice{Kind: ae.Kind, Message: ae.Message()}
	switch ae.Kind {
	case api.KindNetwork:
		n.Guidance, n.RetryLabel = "Check your internet connection and try again.", "Retry Connection"
	case api.KindTimeout:
		n.Guidance, n.RetryLabel = "The request took too long. Please try again.", "Retry Request"
	case api.KindAuthRequired, api.KindUnauthorized, api.KindInvalidCredentials:
		n.Guidance, n.RetryLabel = "Authentication failed. Please log in again.", "Refresh Session"
	case api.KindHTTP:
		switch {
		case ae.Status == http.StatusTooManyRequests:
			n.Guidance, n.RetryLabel = "Too many requests. Please wait a moment before trying again.", "Wait & Retry"
		case ae.Status >= 500:
			n.Guidance, n.RetryLabel = "There was an issue with the task management system. Try a different action.", "Try Different Action"
		default:
			n.Guidance, n.RetryLabel = genericGuidance, genericRetry
		}
	case api.KindValidation:
		n.Guidance, n.RetryLabel = "Fix the highlighted fields and submit again.", "Edit & Retry"
	case api.KindDecode:
		n.Guidance, n.RetryLabel = "The server sent an unexpected response. Please try again.", genericRetry
	default:
		n.Guidance, n.RetryLabel = genericGuidance, genericRetry
	}
	return n
}

// agentNotice is raised when the agent itself answers with type "error".
func agentNotice(content string) Notice {
	if content == "" {
		content = "The assistant reported an error"
	}
	return Notice{Message: content, Guidance: genericGuidance, RetryLabel: genericRetry}
}
