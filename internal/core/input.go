package core

import "github.com/vovakirdan/snakelab/internal/engine"

// Action represents a semantic intent, abstracted from physical key presses.
type Action int

const (
	ActionNone         Action = iota
	ActionUp                  // W, K, Up arrow
	ActionDown                // S, J, Down arrow
	ActionLeft                // A, H, Left arrow
	ActionRight               // D, L, Right arrow
	ActionPause               // P, Space
	ActionRestart             // R
	ActionToggleAI            // Tab - hand the snake to the AI or take it back
	ActionNextStrategy        // ]
	ActionPrevStrategy        // [
	ActionSpeedUp             // +
	ActionSlowDown            // -
	ActionConfirm             // Enter
	ActionBack                // B, Escape
	ActionQuit                // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionToggleAI:
		return "ToggleAI"
	case ActionNextStrategy:
		return "NextStrategy"
	case ActionPrevStrategy:
		return "PrevStrategy"
	case ActionSpeedUp:
		return "SpeedUp"
	case ActionSlowDown:
		return "SlowDown"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction maps a steering action to a board direction.
func (a Action) Direction() (engine.Direction, bool) {
	switch a {
	case ActionUp:
		return engine.DirUp, true
	case ActionDown:
		return engine.DirDown, true
	case ActionLeft:
		return engine.DirLeft, true
	case ActionRight:
		return engine.DirRight, true
	}
	return engine.DirUp, false
}
