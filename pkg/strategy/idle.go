package strategy

import "bomberbot/pkg/core"

// IdleID names the do-nothing strategy.
const IdleID = "idle"

// Idle never proposes anything. Useful as an explicit off switch for a
// unit while others keep playing.
type Idle struct{}

func (Idle) ID() string { return IdleID }

func (Idle) DecideForUnit(core.Unit, *Context) *UnitPlan {
	return nil
}
