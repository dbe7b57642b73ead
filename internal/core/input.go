package core

// Action represents a semantic menu action, abstracted from physical key presses.
// Lane taps are not actions: they carry a column and go straight to the game.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow, k
	ActionDown           // S, Down arrow, j
	ActionLeft           // A, Left arrow, h - decrease a setting
	ActionRight          // D, Right arrow, l - increase a setting
	ActionConfirm        // Enter, Space
	ActionBack           // B, Escape
	ActionQuit           // Q, Ctrl+C
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
