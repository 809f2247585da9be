package roster

import "strings"

// Role is a preferred in-game position attached to a claimed slot.
type Role string

const (
	RoleTop     Role = "Top"
	RoleJungle  Role = "Jungle"
	RoleMid     Role = "Mid"
	RoleADC     Role = "ADC"
	RoleSupport Role = "Support"
	RoleFill    Role = "Fill"
	// RoleNone means the member skipped role selection.
	RoleNone Role = ""
)

// Roles lists the selectable roles in display order.
var Roles = []Role{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport, RoleFill}

// ParseRole matches a role label case-insensitively. The empty string parses
// to RoleNone.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoleNone, true
	}
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return RoleNone, false
}

// MaxAvailabilityLen caps the free-text availability field.
const MaxAvailabilityLen = 100

// NormalizeAvailability trims the text and caps it at MaxAvailabilityLen
// runes. Whitespace-only input normalizes to the empty string (absent).
func NormalizeAvailability(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > MaxAvailabilityLen {
		s = strings.TrimSpace(string(runes[:MaxAvailabilityLen]))
	}
	return s
}

// RosterEntry is one claimed slot's payload. Entries are immutable once
// written; a member changes details by releasing and claiming again.
type RosterEntry struct {
	MemberID     string `json:"member_id"`
	DisplayName  string `json:"display_name"`
	Availability string `json:"availability,omitempty"`
	Role         Role   `json:"role,omitempty"`
}
