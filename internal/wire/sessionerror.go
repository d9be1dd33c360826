package wire

import "fmt"

// ErrorKind enumerates the closed set of SessionError wire variants
// from spec.md §7.
type ErrorKind byte

const (
	// ErrKindServerTimeOut means no response arrived within the
	// client's deadline.
	ErrKindServerTimeOut ErrorKind = iota
	// ErrKindNotFound means the referenced id no longer exists.
	ErrKindNotFound
	// ErrKindCustom means the operation is semantically impossible
	// across the wire (non-transferable parameters or results).
	ErrKindCustom
	// ErrKindDomain wraps an error propagated verbatim from the
	// backing Session (module load failures, invalid paths, etc).
	ErrKindDomain
)

// SessionError is the tagged error carried in Result<T, SessionError>
// payloads.
type SessionError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	switch e.Kind {
	case ErrKindServerTimeOut:
		return "server timed out"
	case ErrKindNotFound:
		return "not found"
	case ErrKindCustom:
		return e.Message
	case ErrKindDomain:
		return e.Message
	default:
		return fmt.Sprintf("session error (kind=%d): %s", e.Kind, e.Message)
	}
}

// ErrServerTimeOut constructs the timeout variant.
func ErrServerTimeOut() *SessionError { return &SessionError{Kind: ErrKindServerTimeOut} }

// ErrNotFound constructs the not-found variant.
func ErrNotFound() *SessionError { return &SessionError{Kind: ErrKindNotFound} }

// ErrCustom constructs the "cannot transfer over the wire" variant.
func ErrCustom(msg string) *SessionError { return &SessionError{Kind: ErrKindCustom, Message: msg} }

// ErrDomain wraps a backing-Session error for wire transport.
func ErrDomain(msg string) *SessionError { return &SessionError{Kind: ErrKindDomain, Message: msg} }

func (e *SessionError) encode(w *Writer) {
	w.u8(byte(e.Kind))
	switch e.Kind {
	case ErrKindCustom, ErrKindDomain:
		w.str(e.Message)
	}
}

func decodeSessionError(r *Reader) (*SessionError, error) {
	kindByte, err := r.u8()
	if err != nil {
		return nil, err
	}
	kind := ErrorKind(kindByte)
	e := &SessionError{Kind: kind}
	switch kind {
	case ErrKindServerTimeOut, ErrKindNotFound:
		// no payload
	case ErrKindCustom, ErrKindDomain:
		msg, err := r.str()
		if err != nil {
			return nil, err
		}
		e.Message = msg
	default:
		return nil, ErrMalformed
	}
	return e, nil
}

// writeResultErr writes the Result<T, SessionError> err tag (1) and
// the error payload.
func writeResultErr(w *Writer, e *SessionError) {
	w.u8(1)
	e.encode(w)
}

// writeResultOkTag writes the Result<T, SessionError> ok tag (0); the
// caller still needs to encode T.
func writeResultOkTag(w *Writer) { w.u8(0) }

// readResultTag reads the Result<T, SessionError> tag byte, returning
// a non-nil *SessionError (and ok=false) when the result was an error.
func readResultTag(r *Reader) (ok bool, sessErr *SessionError, err error) {
	tag, err := r.u8()
	if err != nil {
		return false, nil, err
	}
	if tag == 0 {
		return true, nil, nil
	}
	se, err := decodeSessionError(r)
	if err != nil {
		return false, nil, err
	}
	return false, se, nil
}
