package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// CommandType tags a player action in the run's event log.
type CommandType uint8

const (
	// CmdChooseRelic picks one entry from the pending relic offer.
	CmdChooseRelic CommandType = iota + 1
	// CmdActivateSkill fires a targeted skill at a world position.
	CmdActivateSkill
	// CmdReroll redraws the pending relic offer.
	CmdReroll
)

// Command is a tick-tagged player action. It is a closed tagged union:
// the Type selects which payload fields are meaningful, everything
// else is ignored. Commands for the same tick apply in log order, all
// of them before the tick's step phases run.
//
// A command the world cannot honor (unknown type, no pending offer,
// skill still on cooldown, out-of-range choice) is a defined no-op.
// Both engines must reach identical state even on malformed-but-signed
// input, so the step never faults on a command.
type Command struct {
	Tick  uint64      `json:"tick"`
	Type  CommandType `json:"type"`
	Choice int        `json:"choice,omitempty"`
	Skill SkillID     `json:"skill,omitempty"`
	X     fixed.Value `json:"x,omitempty"`
	Y     fixed.Value `json:"y,omitempty"`
}

// Pos returns the command's target position.
func (c Command) Pos() fixed.Vec {
	return fixed.Vec{X: c.X, Y: c.Y}
}
