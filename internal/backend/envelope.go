package backend

import "fmt"

// Envelope status codes used by every backend response.
const (
	// StatusSuccess signals a successful operation.
	StatusSuccess = 1
	// StatusError signals a failed operation with StrMessage populated.
	StatusError = 0
	// StatusNoData signals an empty-but-successful result.
	StatusNoData = -1
)

// Envelope carries the status fields shared by all backend responses.
type Envelope struct {
	IntStatus  int    `json:"intStatus"`
	StrMessage string `json:"strMessage"`
}

// Env returns the embedded envelope, satisfying Enveloped. The method
// is not named Envelope: on embedding types the field of that name
// would shadow it and the promotion would be lost.
func (e *Envelope) Env() *Envelope { return e }

// Empty reports whether the backend answered "no data found".
func (e *Envelope) Empty() bool { return e.IntStatus == StatusNoData }

// Enveloped is implemented by response types embedding Envelope.
type Enveloped interface {
	Env() *Envelope
}

// RejectedError is a backend rejection whose message must be surfaced
// to the user verbatim.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "backend rejected the request"
	}
	return e.Message
}

// TransportError is a network-level failure reaching the backend.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable at %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
