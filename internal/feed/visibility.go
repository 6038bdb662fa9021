package feed

// Visibility is the transition state of a transient view such as the likers
// popup.
type Visibility int

const (
	Hidden Visibility = iota
	Entering
	Visible
	Exiting
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Entering:
		return "entering"
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// VisibilityEvent drives Transition
type VisibilityEvent int

const (
	// Show asks for the view to appear
	Show VisibilityEvent = iota
	// Hide asks for the view to go away
	Hide
	// Settle reports that the running enter or exit transition finished
	Settle
	// Reset jumps straight to Hidden
	Reset
)

// Transition returns the state after ev. Events that make no sense in the
// current state leave it unchanged.
func Transition(v Visibility, ev VisibilityEvent) Visibility {
	if ev == Reset {
		return Hidden
	}
	switch v {
	case Hidden:
		if ev == Show {
			return Entering
		}
	case Entering:
		switch ev {
		case Settle:
			return Visible
		case Hide:
			return Exiting
		}
	case Visible:
		if ev == Hide {
			return Exiting
		}
	case Exiting:
		switch ev {
		case Settle:
			return Hidden
		case Show:
			return Entering
		}
	}
	return v
}
