package gateway

import (
	"context"
	"strings"
)

// Flow names used in submissions.
const (
	FlowAlbum   = "album"
	FlowRequest = "request"
)

// MessageUnexpected is shown when a gateway fails without a display message.
const MessageUnexpected = "Something went wrong. Please try again."

// FileMeta describes an uploaded file in a submission.
type FileMeta struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

// Submission is the assembled form data handed to a gateway: free-text
// fields, selected option lists and file metadata.
type Submission struct {
	Flow    string              `json:"flow"`
	Fields  map[string]string   `json:"fields,omitempty"`
	Options map[string][]string `json:"options,omitempty"`
	Files   []FileMeta          `json:"files,omitempty"`
	// Token is the caller's session token, if any. It is sent out of band.
	Token string `json:"-"`
}

// Field returns the trimmed value of a text field.
func (s Submission) Field(name string) string {
	return strings.TrimSpace(s.Fields[name])
}

// Outcome is the result of one submission: success with the created entity
// id, or failure with a display-ready message.
type Outcome struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded returns a successful outcome for id.
func Succeeded(id string) Outcome {
	return Outcome{Success: true, ID: id}
}

// Failed returns a failed outcome carrying message.
func Failed(message string) Outcome {
	message = strings.TrimSpace(message)
	if message == "" {
		message = MessageUnexpected
	}
	return Outcome{Success: false, Error: message}
}

// Gateway finalises a flow. A non-nil error means the call itself broke
// (transport, cancellation); callers map it to a failed outcome.
type Gateway interface {
	Submit(ctx context.Context, submission Submission) (Outcome, error)
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, submission Submission) (Outcome, error)

// Submit calls f.
func (f Func) Submit(ctx context.Context, submission Submission) (Outcome, error) {
	return f(ctx, submission)
}
