package videosdk

import "fmt"

// AuthError means the upstream rejected the credential. Fatal, callers
// must not retry.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("[VIDEOSDK]: credential rejected (status %d): %s", e.Status, e.Body)
}

// RateLimitedError means the upstream throttled the request. Callers
// decide whether to retry with backoff.
type RateLimitedError struct {
	Status int
	Body   string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("[VIDEOSDK]: rate limited (status %d): %s", e.Status, e.Body)
}

// UnavailableError means the upstream could not be reached or returned
// a server fault. Transient, callers decide whether to retry.
type UnavailableError struct {
	Status int
	Body   string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[VIDEOSDK]: upstream unreachable: %v", e.Err)
	}
	return fmt.Sprintf("[VIDEOSDK]: upstream failure (status %d): %s", e.Status, e.Body)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedError means the upstream answered with something we cannot
// interpret. Fatal, retrying cannot help.
type MalformedError struct {
	Status int
	Body   string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[VIDEOSDK]: could not parse upstream response: %v", e.Err)
	}
	return fmt.Sprintf("[VIDEOSDK]: unexpected upstream response (status %d): %s", e.Status, e.Body)
}

func (e *MalformedError) Unwrap() error { return e.Err }
