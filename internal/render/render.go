// Package render turns roster snapshots into display payloads for the chat
// gateway. Rendering is pure: the same snapshot and clock reading always
// produce the same payload.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
)

// Accent hints at how the gateway should color the payload.
type Accent string

const (
	AccentOpen   Accent = "blurple"
	AccentFull   Accent = "green"
	AccentClosed Accent = "red"
)

// Field is one structured section of a payload.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Payload is the transport-agnostic display form of a session.
type Payload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	Accent      Accent  `json:"accent"`
}

// EmojiResolver looks up a scope-local glyph for a role label. Absent glyphs
// render as plain text.
type EmojiResolver interface {
	Resolve(scopeID string, role roster.Role) (string, bool)
}

// MentionResolver produces a live mention for a member id. When it misses,
// the entry's display-name snapshot is used instead.
type MentionResolver interface {
	Mention(memberID string) (string, bool)
}

// Presenter renders sessions. The zero value renders without glyphs and with
// plain <@id> mentions.
type Presenter struct {
	Emoji    EmojiResolver
	Mentions MentionResolver
}

const (
	markFilled = "✅"
	markEmpty  = "⬜"
)

// Render builds the display payload for an open (or full) session. now is
// passed in so the output is a pure function of its arguments.
func (p Presenter) Render(snap roster.Snapshot, now time.Time) Payload {
	if snap.Status == roster.StatusClosed {
		return p.RenderClosed(snap)
	}

	filled := snap.FilledCount()
	bar := strings.Repeat(markFilled, filled) + strings.Repeat(markEmpty, snap.Capacity-filled)

	out := Payload{Accent: AccentOpen}
	if filled == snap.Capacity {
		out.Accent = AccentFull
		out.Title = fmt.Sprintf("🎉 GROUP FULL! %s %d/%d", bar, filled, snap.Capacity)
	} else {
		out.Title = fmt.Sprintf("🧩 Group forming: %s %d/%d", bar, filled, snap.Capacity)
	}

	var b strings.Builder
	entries := snap.Entries()
	if len(entries) > 0 {
		b.WriteString("**Joined:**\n")
		for _, e := range entries {
			b.WriteString("• ")
			b.WriteString(p.mention(e))
			if e.Role != roster.RoleNone {
				b.WriteString(" **")
				if glyph, ok := p.resolve(snap.ScopeID, e.Role); ok {
					b.WriteString(glyph)
					b.WriteString(" ")
				}
				b.WriteString(string(e.Role))
				b.WriteString("**")
			}
			if e.Availability != "" {
				b.WriteString(" - *")
				b.WriteString(e.Availability)
				b.WriteString("*")
			}
			b.WriteString("\n")
		}
	}
	if remaining := snap.Remaining(); remaining > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("**Open slots:** %d", remaining))
	}
	out.Description = strings.TrimSpace(b.String())

	if filled == snap.Capacity {
		out.Fields = append(out.Fields, Field{
			Name:  "🎮 Ready to go",
			Value: fmt.Sprintf("All %d slots filled!", snap.Capacity),
		})
		out.Footer = sessionAge(snap, now)
	} else {
		out.Footer = "Hit Join to grab a slot. " + sessionAge(snap, now)
	}
	return out
}

// RenderClosed produces the fixed closed-state payload, independent of the
// roster contents.
func (p Presenter) RenderClosed(snap roster.Snapshot) Payload {
	return Payload{
		Title:       "🔒 Group closed",
		Description: "This sign-up has been closed by the organizer. A new group can be started.",
		Accent:      AccentClosed,
	}
}

func (p Presenter) mention(e roster.RosterEntry) string {
	if p.Mentions != nil {
		if m, ok := p.Mentions.Mention(e.MemberID); ok {
			return m
		}
		if e.DisplayName != "" {
			return e.DisplayName
		}
	}
	return fmt.Sprintf("<@%s>", e.MemberID)
}

func (p Presenter) resolve(scopeID string, role roster.Role) (string, bool) {
	if p.Emoji == nil {
		return "", false
	}
	return p.Emoji.Resolve(scopeID, role)
}

func sessionAge(snap roster.Snapshot, now time.Time) string {
	mins := int(now.Sub(snap.CreatedAt).Minutes())
	if mins < 1 {
		return "Started just now."
	}
	return fmt.Sprintf("Started %dm ago.", mins)
}

// StaticEmoji resolves glyphs from a fixed role→glyph table shared across
// scopes, handy when the gateway does not expose per-scope emoji lookup.
type StaticEmoji map[roster.Role]string

func (m StaticEmoji) Resolve(_ string, role roster.Role) (string, bool) {
	glyph, ok := m[role]
	return glyph, ok
}
