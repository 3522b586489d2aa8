package server

import "fmt"

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateReady
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStarting:
		return "STARTING"
	case StateReady:
		return "READY"
	case StateDraining:
		return "DRAINING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

var validTransitions = map[State]map[State]bool{
	StateStopped:  {StateStarting: true},
	StateStarting: {StateReady: true, StateStopped: true},
	StateReady:    {StateDraining: true},
	StateDraining: {StateStopped: true},
}

func IsValidTransition(from, to State) bool {
	if targets, ok := validTransitions[from]; ok {
		return targets[to]
	}
	return false
}
