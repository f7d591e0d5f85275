package speech

type State int

const (
	Idle State = iota
	Capturing
)

func (s State) String() string {
	if s == Capturing {
		return "capturing"
	}
	return "idle"
}

type Event int

const (
	EvToggle Event = iota
	EvStarted
	EvStartFailed
	EvResult
	EvError
	EvEnded
)

func (e Event) String() string {
	switch e {
	case EvToggle:
		return "toggle"
	case EvStarted:
		return "started"
	case EvStartFailed:
		return "start-failed"
	case EvResult:
		return "result"
	case EvError:
		return "error"
	case EvEnded:
		return "ended"
	}
	return "unknown"
}

// transitions is total over State x Event. A toggle while capturing asks
// the engine to stop and stays in Capturing until the engine reports the
// end.
var transitions = map[State]map[Event]State{
	Idle: {
		EvToggle:      Capturing,
		EvStarted:     Capturing,
		EvStartFailed: Idle,
		EvResult:      Idle,
		EvError:       Idle,
		EvEnded:       Idle,
	},
	Capturing: {
		EvToggle:      Capturing,
		EvStarted:     Capturing,
		EvStartFailed: Idle,
		EvResult:      Capturing,
		EvError:       Capturing,
		EvEnded:       Idle,
	},
}

func next(s State, e Event) State {
	return transitions[s][e]
}
