package visibility

// State is whether the icons left of the separator are visible.
type State int

const (
	Expanded State = iota
	Collapsed
)

func (s State) String() string {
	if s == Collapsed {
		return "collapsed"
	}
	return "expanded"
}
