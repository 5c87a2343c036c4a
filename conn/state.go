package conn

// State is the connection lifecycle state exposed through Conn.String().
type State int32

const (
	Disconnected State = iota
	Connected
	Closed
)

var stateName = map[State]string{
	Disconnected: "disconnected",
	Connected:    "connected",
	Closed:       "closed",
}

func (s State) String() string {
	name, ok := stateName[s]
	if !ok {
		return "unknown"
	}
	return name
}
