// Package backend abstracts "render this URL and give me HTML" over four
// interchangeable providers: a cloud browser service, a locally launched
// headless browser, a serverless-packaged browser, and a remote render API.
// The orchestrator never branches on which one it holds.
package backend

import (
	"context"
	"fmt"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Backend is the interface every rendering provider implements.
type Backend interface {
	// Kind returns the backend identifier.
	Kind() models.BackendKind

	// Render loads the URL, waits for the page to be usable for the given
	// mode, and returns the fully rendered HTML. Any browser session opened
	// for the call is released before Render returns, on every exit path.
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
}

// RenderRequest describes one render attempt.
type RenderRequest struct {
	URL  string
	Mode models.RenderMode
}

// RenderResult is the output of exactly one backend invocation. It is
// owned by the orchestrator for the duration of one request and is never
// mutated after creation; extractors read it only.
type RenderResult struct {
	HTML          string
	FinalURL      string
	Title         string
	ContentLength int
	Backend       models.BackendKind
	Blocked       bool
	Diagnostics   map[string]any
}

// RenderError is the failure type for backend attempts. Transient errors
// (quota exhausted, auth failure, network error, navigation timeout) tell
// the orchestrator to try the next backend; fatal errors do not.
type RenderError struct {
	Backend   models.BackendKind
	Transient bool
	Message   string
	Err       error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// transientErr builds a RenderError that permits fail-over.
func transientErr(kind models.BackendKind, msg string, err error) *RenderError {
	return &RenderError{Backend: kind, Transient: true, Message: msg, Err: err}
}

// fatalErr builds a RenderError that does not permit fail-over.
func fatalErr(kind models.BackendKind, msg string, err error) *RenderError {
	return &RenderError{Backend: kind, Transient: false, Message: msg, Err: err}
}
