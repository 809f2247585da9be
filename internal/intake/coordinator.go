// Package intake runs the interactive join flow: eager precondition check,
// role selection, availability prompt, then a re-validated commit. The roster
// is never touched while waiting on the user, so an abandoned flow reserves
// nothing.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/domain/signup"
	"github.com/fivestackbot/fivestack/internal/render"
)

var (
	// ErrCancelled ends the flow when the user abandons a prompt.
	ErrCancelled = errors.New("intake cancelled")
	// ErrOvertaken marks a commit-time rejection: the roster changed while
	// the user was filling in details.
	ErrOvertaken = errors.New("slot filled in the meantime")
)

// RoleSelector collects a role choice from the user. Implementations return
// ErrCancelled when the user abandons or the prompt times out.
type RoleSelector interface {
	CollectRole(ctx context.Context, memberID string) (roster.Role, error)
}

// TextPrompter collects optional free text from the user, capped at maxLen.
type TextPrompter interface {
	CollectText(ctx context.Context, memberID string, maxLen int) (string, error)
}

// Broadcaster announces to the scope's channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, scopeID, text string) error
}

// Sessions is the slice of the signup service the coordinator needs.
type Sessions interface {
	CanClaim(scopeID, memberID string) error
	Claim(ctx context.Context, req signup.ClaimRequest) (*signup.ClaimResult, error)
}

// Member identifies the acting user.
type Member struct {
	ID          string
	DisplayName string
}

// Coordinator drives the two-step intake ahead of a claim.
type Coordinator struct {
	sessions Sessions
	roles    RoleSelector
	prompt   TextPrompter
	notify   Broadcaster
	logger   *slog.Logger
}

// NewCoordinator creates an intake coordinator.
func NewCoordinator(sessions Sessions, roles RoleSelector, prompt TextPrompter, notify Broadcaster, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{
		sessions: sessions,
		roles:    roles,
		prompt:   prompt,
		notify:   notify,
		logger:   logger,
	}
}

// Join runs the full flow for one member. The returned payload reflects the
// roster after the commit.
func (c *Coordinator) Join(ctx context.Context, scopeID string, member Member) (render.Payload, error) {
	// Eager check: reject before opening any prompt, so the user isn't walked
	// through two dialogs only to hit a full roster.
	if err := c.sessions.CanClaim(scopeID, member.ID); err != nil {
		return render.Payload{}, err
	}

	role, err := c.roles.CollectRole(ctx, member.ID)
	if err != nil {
		return render.Payload{}, fmt.Errorf("collecting role: %w", err)
	}

	availability, err := c.prompt.CollectText(ctx, member.ID, roster.MaxAvailabilityLen)
	if err != nil {
		return render.Payload{}, fmt.Errorf("collecting availability: %w", err)
	}

	// Commit with re-validation: the roster may have changed while the user
	// was typing. A rejection here is a different failure than the eager one.
	res, err := c.sessions.Claim(ctx, signup.ClaimRequest{
		ScopeID:      scopeID,
		MemberID:     member.ID,
		DisplayName:  member.DisplayName,
		Availability: availability,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, roster.ErrFull) || errors.Is(err, roster.ErrAlreadyJoined) || errors.Is(err, roster.ErrClosed) {
			return render.Payload{}, fmt.Errorf("%w: %w", ErrOvertaken, err)
		}
		return render.Payload{}, err
	}

	if res.RosterFull {
		// Best-effort: the claim is already committed, a lost broadcast must
		// not roll it back.
		if err := c.notify.Broadcast(ctx, scopeID, rosterCompleteMessage(res.MemberIDs)); err != nil {
			c.logger.Warn("roster-complete broadcast failed", "scope", scopeID, "error", err)
		}
	}
	return res.Payload, nil
}

func rosterCompleteMessage(memberIDs []string) string {
	mentions := make([]string, len(memberIDs))
	for i, id := range memberIDs {
		mentions[i] = "<@" + id + ">"
	}
	return fmt.Sprintf("🎉 **GROUP IS FULL!** %s\nYour five-stack is ready. Coordinate and have fun! 🎮", strings.Join(mentions, " "))
}
