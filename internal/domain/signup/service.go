// Package signup exposes the session operations the hosting gateway calls:
// start, claim, release, reset, close, force-reset, touch, status. Every
// mutation goes through the in-memory registry (the authority), then is
// written through to storage, logged to the activity trail, re-rendered, and
// pushed to display subscribers.
package signup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fivestackbot/fivestack/internal/domain/activity"
	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/render"
)

// SessionStore persists session snapshots.
type SessionStore interface {
	Save(ctx context.Context, snap roster.Snapshot) error
	ListOpen(ctx context.Context) ([]roster.Snapshot, error)
}

// Publisher pushes re-rendered payloads to display subscribers.
type Publisher interface {
	Publish(scopeID string, payload render.Payload)
}

// Service coordinates the roster engine with persistence and display.
type Service struct {
	registry  *roster.Registry
	store     SessionStore
	events    *activity.Service
	presenter render.Presenter
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates a signup service. publisher may be nil.
func NewService(
	registry *roster.Registry,
	store SessionStore,
	events *activity.Service,
	presenter render.Presenter,
	publisher Publisher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		registry:  registry,
		store:     store,
		events:    events,
		presenter: presenter,
		publisher: publisher,
		logger:    logger,
	}
}

// ClaimRequest carries one member's claim.
type ClaimRequest struct {
	ScopeID      string
	MemberID     string
	DisplayName  string
	Availability string
	Role         roster.Role
}

// ClaimResult reports a committed claim.
type ClaimResult struct {
	Payload    render.Payload
	SlotIndex  int
	RosterFull bool
	// MemberIDs lists the occupying members in slot order, for the
	// roster-complete broadcast.
	MemberIDs []string
}

// Summary is the read-only session diagnostic.
type Summary struct {
	ScopeID       string        `json:"scope_id"`
	SessionID     string        `json:"session_id"`
	OwnerID       string        `json:"owner_id"`
	Filled        int           `json:"filled"`
	Capacity      int           `json:"capacity"`
	Closed        bool          `json:"closed"`
	CreatedAt     time.Time     `json:"created_at"`
	LastTouchedAt time.Time     `json:"last_touched_at"`
	Age           time.Duration `json:"age"`
	IdleFor       time.Duration `json:"idle_for"`
}

// Start opens a new session for the scope.
func (s *Service) Start(ctx context.Context, scopeID, ownerID string) (render.Payload, error) {
	sess, err := s.registry.Start(scopeID, ownerID)
	if err != nil {
		return render.Payload{}, err
	}
	s.logger.Info("session started", "scope", scopeID, "session", sess.ID(), "owner", ownerID)

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, nil, activity.TypeSessionStarted, "session started by "+ownerID)
	return s.present(snap), nil
}

// CanClaim reports whether a claim by memberID would currently succeed,
// without mutating anything. Used for the intake eager check.
func (s *Service) CanClaim(scopeID, memberID string) error {
	sess, ok := s.registry.Get(scopeID)
	if !ok {
		return roster.ErrNoActiveSession
	}
	return sess.CanClaim(memberID)
}

// Claim commits a member into the lowest empty slot.
func (s *Service) Claim(ctx context.Context, req ClaimRequest) (*ClaimResult, error) {
	sess, ok := s.registry.Get(req.ScopeID)
	if !ok {
		return nil, roster.ErrNoActiveSession
	}

	idx, err := sess.Claim(req.MemberID, req.DisplayName, req.Availability, req.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("member joined", "scope", req.ScopeID, "member", req.MemberID, "slot", idx)

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, &req.MemberID, activity.TypeMemberJoined, fmt.Sprintf("%s claimed slot %d", req.MemberID, idx))

	return &ClaimResult{
		Payload:    s.present(snap),
		SlotIndex:  idx,
		RosterFull: snap.FilledCount() == snap.Capacity,
		MemberIDs:  snap.MemberIDs(),
	}, nil
}

// Release clears the member's slot.
func (s *Service) Release(ctx context.Context, scopeID, memberID string) (render.Payload, error) {
	sess, ok := s.registry.Get(scopeID)
	if !ok {
		return render.Payload{}, roster.ErrNoActiveSession
	}

	idx, err := sess.Release(memberID)
	if err != nil {
		return render.Payload{}, err
	}
	s.logger.Info("member left", "scope", scopeID, "member", memberID, "slot", idx)

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, &memberID, activity.TypeMemberLeft, fmt.Sprintf("%s released slot %d", memberID, idx))
	return s.present(snap), nil
}

// Reset clears all slots. Owner-only.
func (s *Service) Reset(ctx context.Context, scopeID, actorID string) (render.Payload, error) {
	sess, ok := s.registry.Get(scopeID)
	if !ok {
		return render.Payload{}, roster.ErrNoActiveSession
	}

	if err := sess.Reset(actorID); err != nil {
		return render.Payload{}, err
	}
	s.logger.Info("roster reset", "scope", scopeID, "actor", actorID)

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, &actorID, activity.TypeRosterReset, "roster reset by owner")
	return s.present(snap), nil
}

// Close ends the session. Owner-only; the scope becomes free for a new start.
// Close and eviction happen atomically in the registry, so a concurrent Start
// for the scope either sees the open session or the freed scope, never a
// window in which its fresh session gets evicted.
func (s *Service) Close(ctx context.Context, scopeID, actorID string) (render.Payload, error) {
	sess, err := s.registry.Close(scopeID, actorID)
	if err != nil {
		return render.Payload{}, err
	}
	s.logger.Info("session closed", "scope", scopeID, "session", sess.ID())

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, &actorID, activity.TypeSessionClosed, "session closed by owner")
	return s.present(snap), nil
}

// ForceReset closes and evicts the scope's session regardless of owner.
// The transport layer restricts it to moderation callers.
func (s *Service) ForceReset(ctx context.Context, scopeID, actorID string) (render.Payload, error) {
	sess, err := s.registry.ForceReset(scopeID)
	if err != nil {
		return render.Payload{}, err
	}
	s.logger.Warn("session force-reset", "scope", scopeID, "session", sess.ID(), "actor", actorID)

	snap := sess.Snapshot()
	s.persist(ctx, snap)
	s.record(ctx, snap, &actorID, activity.TypeForceReset, "session force-reset by "+actorID)
	return s.present(snap), nil
}

// Touch refreshes the session's keepalive timestamp.
func (s *Service) Touch(ctx context.Context, scopeID string) error {
	sess, ok := s.registry.Get(scopeID)
	if !ok {
		return roster.ErrNoActiveSession
	}
	sess.Touch()
	s.persist(ctx, sess.Snapshot())
	return nil
}

// Status returns the read-only session diagnostic.
func (s *Service) Status(scopeID string) (*Summary, error) {
	sess, ok := s.registry.Get(scopeID)
	if !ok {
		return nil, roster.ErrNoActiveSession
	}
	snap := sess.Snapshot()
	now := time.Now().UTC()
	return &Summary{
		ScopeID:       snap.ScopeID,
		SessionID:     snap.ID,
		OwnerID:       snap.OwnerID,
		Filled:        snap.FilledCount(),
		Capacity:      snap.Capacity,
		Closed:        snap.Status == roster.StatusClosed,
		CreatedAt:     snap.CreatedAt,
		LastTouchedAt: snap.LastTouchedAt,
		Age:           now.Sub(snap.CreatedAt),
		IdleFor:       now.Sub(snap.LastTouchedAt),
	}, nil
}

// Activity lists the scope's recent session events.
func (s *Service) Activity(ctx context.Context, scopeID string, limit int) ([]activity.Entry, error) {
	if s.events == nil {
		return nil, nil
	}
	return s.events.Recent(ctx, scopeID, activity.ListOptions{Limit: limit})
}

// Restore reloads open sessions from storage into the registry during warm
// start. Rows that fail invariant validation are skipped and logged.
func (s *Service) Restore(ctx context.Context) error {
	snaps, err := s.store.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("listing open sessions: %w", err)
	}

	adopted := 0
	for _, snap := range snaps {
		sess, err := roster.Restore(snap)
		if err != nil {
			s.logger.Warn("skipping invalid persisted session", "scope", snap.ScopeID, "error", err)
			continue
		}
		if s.registry.Adopt(sess) {
			adopted++
		}
	}
	s.logger.Info("restored sessions", "count", adopted)
	return nil
}

// ExpireIdle force-closes sessions untouched for longer than idleAfter and
// returns how many were closed.
func (s *Service) ExpireIdle(ctx context.Context, idleAfter time.Duration) (int, error) {
	if idleAfter <= 0 {
		return 0, nil
	}

	expired := 0
	cutoff := time.Now().UTC().Add(-idleAfter)
	for _, scopeID := range s.registry.Scopes() {
		sess, ok := s.registry.Get(scopeID)
		if !ok || sess.LastTouchedAt().After(cutoff) {
			continue
		}
		// Identity-checked: if the scope was closed and restarted since the
		// idleness check, the fresh session is left alone.
		if !s.registry.ForceResetIf(scopeID, sess) {
			continue
		}
		s.logger.Info("session expired", "scope", scopeID, "session", sess.ID())

		snap := sess.Snapshot()
		s.persist(ctx, snap)
		s.record(ctx, snap, nil, activity.TypeSessionExpired, "session expired after idle timeout")
		s.publish(scopeID, s.presenter.RenderClosed(snap))
		expired++
	}
	return expired, nil
}

// present renders the snapshot and pushes it to display subscribers.
func (s *Service) present(snap roster.Snapshot) render.Payload {
	payload := s.presenter.Render(snap, time.Now().UTC())
	s.publish(snap.ScopeID, payload)
	return payload
}

func (s *Service) publish(scopeID string, payload render.Payload) {
	if s.publisher != nil {
		s.publisher.Publish(scopeID, payload)
	}
}

// persist writes through to storage. The registry stays authoritative, so a
// storage failure is logged rather than surfaced.
func (s *Service) persist(ctx context.Context, snap roster.Snapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to persist session", "scope", snap.ScopeID, "error", err)
	}
}

func (s *Service) record(ctx context.Context, snap roster.Snapshot, memberID *string, typ activity.Type, summary string) {
	if s.events == nil {
		return
	}
	err := s.events.Record(ctx, &activity.Entry{
		ScopeID:   snap.ScopeID,
		SessionID: snap.ID,
		MemberID:  memberID,
		Type:      typ,
		Summary:   summary,
	})
	if err != nil {
		s.logger.Warn("failed to record activity", "scope", snap.ScopeID, "error", err)
	}
}
