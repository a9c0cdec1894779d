package jobs

import "strings"

type State int

const (
	Unknown State = iota
	Init
	Accepted
	NoAvailableWorkers
	Error
	Failed
	Complete
)

func (s State) String() string {
	switch s {
	default:
		return "Unknown"
	case Init:
		return "Init"
	case Accepted:
		return "Accepted"
	case NoAvailableWorkers:
		return "NoAvailableWorkers"
	case Error:
		return "Error"
	case Failed:
		return "Failed"
	case Complete:
		return "Complete"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	*s = StateFromText(string(text))
	return nil
}

func StateFromText(text string) State {
	switch strings.ToLower(text) {
	default:
		return Unknown
	case "init":
		return Init
	case "accepted":
		return Accepted
	case "noavailableworkers":
		return NoAvailableWorkers
	case "error":
		return Error
	case "failed":
		return Failed
	case "complete":
		return Complete
	}
}
