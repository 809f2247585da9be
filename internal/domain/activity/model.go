package activity

import "time"

// Type classifies a session event.
type Type string

const (
	TypeSessionStarted Type = "session_started"
	TypeMemberJoined   Type = "member_joined"
	TypeMemberLeft     Type = "member_left"
	TypeRosterReset    Type = "roster_reset"
	TypeSessionClosed  Type = "session_closed"
	TypeSessionExpired Type = "session_expired"
	TypeForceReset     Type = "force_reset"
)

// Entry is one event in a scope's session history.
type Entry struct {
	ID        int64     `json:"id"`
	ScopeID   string    `json:"scope_id"`
	SessionID string    `json:"session_id"`
	MemberID  *string   `json:"member_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions filters activity listings.
type ListOptions struct {
	Type  *Type
	Limit int
}
