package session

// state is derived from whether the client holds a channel.
type state int

const (
	stateDisconnected state = iota
	stateConnected
)

func (s state) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
