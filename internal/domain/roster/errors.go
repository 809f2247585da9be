package roster

import "errors"

var (
	// ErrClosed rejects roster mutations on a closed session.
	ErrClosed = errors.New("session is closed")
	// ErrAlreadyClosed rejects a repeated close.
	ErrAlreadyClosed = errors.New("session is already closed")
	// ErrAlreadyJoined indicates the member already occupies a slot.
	ErrAlreadyJoined = errors.New("member already joined")
	// ErrNotJoined indicates the member occupies no slot.
	ErrNotJoined = errors.New("member not in roster")
	// ErrFull indicates no empty slot remains.
	ErrFull = errors.New("roster is full")
	// ErrNotOwner rejects an owner-only operation by another member.
	ErrNotOwner = errors.New("only the session owner may do that")
	// ErrAlreadyActive rejects starting a second session in a scope.
	ErrAlreadyActive = errors.New("an active session already exists for this scope")
	// ErrNoActiveSession indicates the scope has no live session.
	ErrNoActiveSession = errors.New("no active session for this scope")
)
