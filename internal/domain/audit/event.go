// Package audit defines the immutable audit-trail records written for every
// tracked action on the platform.
package audit

import (
	"errors"
	"strings"
	"time"
)

type Action string

const (
	ActionLogin       Action = "LOGIN"
	ActionSignup      Action = "SIGNUP"
	ActionViewPDF     Action = "VIEW_PDF"
	ActionDownloadPDF Action = "DOWNLOAD_PDF"
)

var ErrUnknownAction = errors.New("unknown action")

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionLogin:
		return ActionLogin, nil
	case ActionSignup:
		return ActionSignup, nil
	case ActionViewPDF:
		return ActionViewPDF, nil
	case ActionDownloadPDF:
		return ActionDownloadPDF, nil
	}

	return "", ErrUnknownAction
}

// AnonymousMarker is what gets persisted for events with no authenticated
// actor. Kept identical to the value the legacy backend wrote so old and new
// rows stay queryable together.
const AnonymousMarker = "ANONYMOUS"

// Actor identifies who performed an action. The zero value means anonymous.
type Actor struct {
	ID    string
	Email string
}

func (a Actor) Anonymous() bool {
	return a.ID == "" && a.Email == ""
}

// Event is immutable once written. ID, Timestamp and Seq are assigned by the
// log at write time, never by the caller.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail"`
	NoteID    string    `json:"noteId,omitempty"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ipAddress"`
	Timestamp time.Time `json:"timestamp"`
	Seq       int64     `json:"-"` // insertion order, tiebreak for equal timestamps
}
