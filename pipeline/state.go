package pipeline

// State is a position in the release sequence.
type State int

// States in transition order. Aborted is reachable from any state.
const (
	Start State = iota
	Validated
	Verified
	Packaged
	Tagged
	Pushed
	Published
	Done
	Aborted
)

var stateNames = [...]string{
	Start:     "Start",
	Validated: "Validated",
	Verified:  "Verified",
	Packaged:  "Packaged",
	Tagged:    "Tagged",
	Pushed:    "Pushed",
	Published: "Published",
	Done:      "Done",
	Aborted:   "Aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Done || s == Aborted
}
