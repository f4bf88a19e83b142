package transfer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/cloudbox/internal/client/client"
)

var ErrTransferInProgress = errors.New("another upload is in progress")

type EventType int

const (
	EventProgress EventType = iota + 1
	EventOutcome
)

// Event is either a progress tick (Percent in [0,100]) or the terminal
// Outcome of the transfer.
type Event struct {
	Type    EventType
	Percent int
	Outcome *Outcome
}

type Status int

const (
	StatusSuccess Status = iota + 1
	StatusFailure
)

type FailureKind int

const (
	// FailureStatus means the server answered with a status other than 200.
	FailureStatus FailureKind = iota + 1
	// FailureTransport means no response was received.
	FailureTransport
)

type Outcome struct {
	Status     Status
	Kind       FailureKind
	StatusCode int
	Body       string
	Err        error
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// AsError converts a failed outcome into an error; nil for success.
func (o Outcome) AsError() error {
	if o.Succeeded() {
		return nil
	}
	return &Error{Outcome: o}
}

// Error wraps a failed Outcome.
type Error struct {
	Outcome Outcome
}

func (e *Error) Error() string {
	o := e.Outcome
	if o.Kind == FailureTransport {
		return fmt.Sprintf("upload failed: %v", o.Err)
	}
	if o.Body == "" {
		return fmt.Sprintf("upload failed: status %d", o.StatusCode)
	}
	return fmt.Sprintf("upload failed: status %d: %s", o.StatusCode, o.Body)
}

func (e *Error) Unwrap() error {
	return e.Outcome.Err
}

// Is reports a 401 or 403 answer as client.ErrUnauthorized, the same way
// the API client classifies those statuses.
func (e *Error) Is(target error) bool {
	if target != client.ErrUnauthorized || e.Outcome.Kind != FailureStatus {
		return false
	}
	return e.Outcome.StatusCode == http.StatusUnauthorized || e.Outcome.StatusCode == http.StatusForbidden
}
