package booking

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Role is the caller's relation to a booking.
type Role int

const (
	RoleNone Role = iota
	RoleOwner
	RoleBorrower
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleBorrower:
		return "borrower"
	default:
		return "none"
	}
}

// Effect is the availability side effect of a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectBlock
	EffectUnblock
)

type transitionKey struct {
	from Status
	to   Status
}

type transitionRule struct {
	actor  Role
	effect Effect
}

var transitions = map[transitionKey]transitionRule{
	{StatusPending, StatusConfirmed}:   {actor: RoleOwner, effect: EffectBlock},
	{StatusPending, StatusRejected}:    {actor: RoleOwner, effect: EffectUnblock},
	{StatusPending, StatusCancelled}:   {actor: RoleBorrower, effect: EffectUnblock},
	{StatusConfirmed, StatusCompleted}: {actor: RoleOwner, effect: EffectNone},
	{StatusConfirmed, StatusCancelled}: {actor: RoleBorrower, effect: EffectUnblock},
}

// ParseStatus accepts a status name in any case. Unknown names are an
// invalid transition target.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidTransition
	}
}

func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Transition is the whole booking state machine. Authorization is checked
// before the state pair, so a borrower asking to confirm anything gets
// ErrUnauthorized even when the booking is already terminal.
func Transition(current, requested Status, role Role) (Status, Effect, error) {
	if role == RoleNone {
		return current, EffectNone, ErrUnauthorized
	}
	actor, known := actorFor(requested)
	if !known {
		return current, EffectNone, ErrInvalidTransition
	}
	if actor != role {
		return current, EffectNone, ErrUnauthorized
	}
	if current.Terminal() {
		return current, EffectNone, ErrInvalidTransition
	}
	rule, ok := transitions[transitionKey{from: current, to: requested}]
	if !ok {
		return current, EffectNone, ErrInvalidTransition
	}
	return requested, rule.effect, nil
}

// actorFor reports who may ask for a target status at all, regardless of the
// current one. Every rule leading to the same status names the same actor.
func actorFor(requested Status) (Role, bool) {
	for key, rule := range transitions {
		if key.to == requested {
			return rule.actor, true
		}
	}
	return RoleNone, false
}
