package transport

import (
	"context"
	"net/http"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/intake"
	"github.com/fivestackbot/fivestack/internal/render"
	"github.com/go-chi/chi/v5"
)

// The gateway runs the role and availability dialogs itself and submits the
// collected answers with the join request. These adapters replay the answers
// into the coordinator's prompt ports, so a join still goes through the eager
// precondition check, the re-validated commit, and the roster-complete
// broadcast.
type collectedRole struct{ role roster.Role }

func (c collectedRole) CollectRole(context.Context, string) (roster.Role, error) {
	return c.role, nil
}

type collectedText struct{ text string }

func (c collectedText) CollectText(context.Context, string, int) (string, error) {
	return c.text, nil
}

// feedBroadcaster announces to the scope's feed subscribers. A nil feed makes
// it a no-op, matching the feed-less server configuration.
type feedBroadcaster struct{ feed *Feed }

func (b feedBroadcaster) Broadcast(_ context.Context, scopeID, text string) error {
	if b.feed == nil {
		return nil
	}
	b.feed.Publish(scopeID, render.Payload{
		Description: text,
		Accent:      render.AccentFull,
	})
	return nil
}

type joinRequest struct {
	MemberID     string `json:"member_id"`
	DisplayName  string `json:"display_name"`
	Availability string `json:"availability"`
	Role         string `json:"role"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decode(r, &req); err != nil || req.MemberID == "" {
		writeBadRequest(w, "member_id is required")
		return
	}
	role, ok := roster.ParseRole(req.Role)
	if !ok {
		writeBadRequest(w, "unknown role: "+req.Role)
		return
	}

	// The coordinator is cheap to build; its prompt ports carry this
	// request's answers.
	flow := intake.NewCoordinator(
		s.signup,
		collectedRole{role: role},
		collectedText{text: req.Availability},
		feedBroadcaster{feed: s.feed},
		s.logger,
	)
	payload, err := flow.Join(r.Context(), chi.URLParam(r, "scope"), intake.Member{
		ID:          req.MemberID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
