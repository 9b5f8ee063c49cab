package core

// Action represents a semantic game action, abstracted from physical key presses
// and from remote controller directions.
type Action int

const (
	ActionNone    Action = iota
	ActionLeft           // A, Left arrow, remote "left"
	ActionRight          // D, Right arrow, remote "right"
	ActionJump           // W, Up, Space, remote "up"
	ActionSlide          // S, Down, remote "down"
	ActionEnd            // E - abandon the current run
	ActionRestart        // R - restart after game over
	ActionPause          // P - pause/unpause
	ActionBack           // Esc, B - leave a screen
	ActionQuit           // Q, Ctrl+C - exit the session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionJump:
		return "Jump"
	case ActionSlide:
		return "Slide"
	case ActionEnd:
		return "End"
	case ActionRestart:
		return "Restart"
	case ActionPause:
		return "Pause"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// ActionForDirection maps a remote controller direction to an action.
// Unknown directions map to ActionNone.
func ActionForDirection(direction string) Action {
	switch direction {
	case "left":
		return ActionLeft
	case "right":
		return ActionRight
	case "up":
		return ActionJump
	case "down":
		return ActionSlide
	default:
		return ActionNone
	}
}

// InputFrame holds the actions triggered during one host tick.
type InputFrame struct {
	// Actions keeps insertion order so that lane changes replay as pressed.
	Actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make([]Action, 0, 4)}
}

// Set records an action for this frame.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone {
		return
	}
	f.Actions = append(f.Actions, a)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	for _, got := range f.Actions {
		if got == a {
			return true
		}
	}
	return false
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	f.Actions = f.Actions[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := InputFrame{Actions: make([]Action, len(f.Actions))}
	copy(clone.Actions, f.Actions)
	return clone
}
