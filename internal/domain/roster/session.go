package roster

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session. Closed is terminal.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Session is a bounded roster owned by one member within one scope. All
// mutating operations serialize on an internal mutex and are atomic: on error
// the roster is left untouched.
type Session struct {
	mu sync.Mutex

	id       string
	scopeID  string
	ownerID  string
	capacity int

	slots         []*RosterEntry
	status        Status
	createdAt     time.Time
	lastTouchedAt time.Time
}

// NewSession creates an open session with capacity empty slots.
func NewSession(scopeID, ownerID string, capacity int) *Session {
	now := time.Now().UTC()
	return &Session{
		id:            uuid.New().String(),
		scopeID:       scopeID,
		ownerID:       ownerID,
		capacity:      capacity,
		slots:         make([]*RosterEntry, capacity),
		status:        StatusOpen,
		createdAt:     now,
		lastTouchedAt: now,
	}
}

// Snapshot is an immutable copy of session state, used for rendering and
// persistence.
type Snapshot struct {
	ID            string         `json:"id"`
	ScopeID       string         `json:"scope_id"`
	OwnerID       string         `json:"owner_id"`
	Capacity      int            `json:"capacity"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	LastTouchedAt time.Time      `json:"last_touched_at"`
	Slots         []*RosterEntry `json:"slots"`
}

// FilledCount returns the number of occupied slots.
func (s Snapshot) FilledCount() int {
	n := 0
	for _, e := range s.Slots {
		if e != nil {
			n++
		}
	}
	return n
}

// Remaining returns the number of empty slots.
func (s Snapshot) Remaining() int { return s.Capacity - s.FilledCount() }

// Entries returns the occupied entries in slot order.
func (s Snapshot) Entries() []RosterEntry {
	out := make([]RosterEntry, 0, len(s.Slots))
	for _, e := range s.Slots {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// MemberIDs returns the occupying member ids in slot order.
func (s Snapshot) MemberIDs() []string {
	out := make([]string, 0, len(s.Slots))
	for _, e := range s.Slots {
		if e != nil {
			out = append(out, e.MemberID)
		}
	}
	return out
}

// Restore rebuilds a session from a persisted snapshot, re-validating the
// roster invariants.
func Restore(snap Snapshot) (*Session, error) {
	if snap.ID == "" || snap.ScopeID == "" || snap.OwnerID == "" {
		return nil, fmt.Errorf("restore session: missing identity fields")
	}
	if snap.Capacity <= 0 {
		return nil, fmt.Errorf("restore session %s: capacity %d", snap.ID, snap.Capacity)
	}
	if len(snap.Slots) > snap.Capacity {
		return nil, fmt.Errorf("restore session %s: %d slots exceed capacity %d", snap.ID, len(snap.Slots), snap.Capacity)
	}
	if snap.Status != StatusOpen && snap.Status != StatusClosed {
		return nil, fmt.Errorf("restore session %s: unknown status %q", snap.ID, snap.Status)
	}

	slots := make([]*RosterEntry, snap.Capacity)
	seen := make(map[string]bool)
	for i, e := range snap.Slots {
		if e == nil {
			continue
		}
		if seen[e.MemberID] {
			return nil, fmt.Errorf("restore session %s: member %s occupies two slots", snap.ID, e.MemberID)
		}
		seen[e.MemberID] = true
		entry := *e
		slots[i] = &entry
	}

	return &Session{
		id:            snap.ID,
		scopeID:       snap.ScopeID,
		ownerID:       snap.OwnerID,
		capacity:      snap.Capacity,
		slots:         slots,
		status:        snap.Status,
		createdAt:     snap.CreatedAt,
		lastTouchedAt: snap.LastTouchedAt,
	}, nil
}

func (s *Session) ID() string      { return s.id }
func (s *Session) ScopeID() string { return s.scopeID }
func (s *Session) OwnerID() string { return s.ownerID }
func (s *Session) Capacity() int   { return s.capacity }

// Snapshot copies the current state under the session lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	slots := make([]*RosterEntry, len(s.slots))
	for i, e := range s.slots {
		if e != nil {
			entry := *e
			slots[i] = &entry
		}
	}
	return Snapshot{
		ID:            s.id,
		ScopeID:       s.scopeID,
		OwnerID:       s.ownerID,
		Capacity:      s.capacity,
		Status:        s.status,
		CreatedAt:     s.createdAt,
		LastTouchedAt: s.lastTouchedAt,
		Slots:         slots,
	}
}

// CanClaim reports whether a claim by memberID would currently succeed.
// Checks run in the fixed order Closed, AlreadyJoined, Full so the caller
// always gets the single most relevant rejection.
func (s *Session) CanClaim(memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canClaimLocked(memberID)
}

func (s *Session) canClaimLocked(memberID string) error {
	if s.status == StatusClosed {
		return ErrClosed
	}
	if s.memberSlotLocked(memberID) >= 0 {
		return ErrAlreadyJoined
	}
	if s.firstEmptyLocked() < 0 {
		return ErrFull
	}
	return nil
}

// Claim writes an entry into the lowest-index empty slot and returns its
// index. Availability is normalized per NormalizeAvailability.
func (s *Session) Claim(memberID, displayName, availability string, role Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canClaimLocked(memberID); err != nil {
		return -1, err
	}
	idx := s.firstEmptyLocked()
	s.slots[idx] = &RosterEntry{
		MemberID:     memberID,
		DisplayName:  displayName,
		Availability: NormalizeAvailability(availability),
		Role:         role,
	}
	s.lastTouchedAt = time.Now().UTC()
	return idx, nil
}

// Release clears memberID's slot and returns the vacated index.
func (s *Session) Release(memberID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return -1, ErrClosed
	}
	idx := s.memberSlotLocked(memberID)
	if idx < 0 {
		return -1, ErrNotJoined
	}
	s.slots[idx] = nil
	s.lastTouchedAt = time.Now().UTC()
	return idx, nil
}

// Reset clears every slot. Owner-only; status stays Open.
func (s *Session) Reset(actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return ErrClosed
	}
	if actorID != s.ownerID {
		return ErrNotOwner
	}
	for i := range s.slots {
		s.slots[i] = nil
	}
	s.lastTouchedAt = time.Now().UTC()
	return nil
}

// Close transitions the session to Closed, the only terminal transition.
// AlreadyClosed is checked before NotOwner so repeated close attempts get a
// stable answer regardless of actor.
func (s *Session) Close(actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return ErrAlreadyClosed
	}
	if actorID != s.ownerID {
		return ErrNotOwner
	}
	s.status = StatusClosed
	s.lastTouchedAt = time.Now().UTC()
	return nil
}

// ForceClose marks the session closed regardless of actor. Used by the
// administrative force-reset and the idle sweeper. Idempotent.
func (s *Session) ForceClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusClosed
	s.lastTouchedAt = time.Now().UTC()
}

// Touch refreshes the keepalive timestamp; no other effect.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouchedAt = time.Now().UTC()
}

// IsFull reports whether every slot is occupied.
func (s *Session) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstEmptyLocked() < 0
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusClosed
}

// LastTouchedAt returns the keepalive timestamp.
func (s *Session) LastTouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouchedAt
}

func (s *Session) memberSlotLocked(memberID string) int {
	for i, e := range s.slots {
		if e != nil && e.MemberID == memberID {
			return i
		}
	}
	return -1
}

func (s *Session) firstEmptyLocked() int {
	for i, e := range s.slots {
		if e == nil {
			return i
		}
	}
	return -1
}
