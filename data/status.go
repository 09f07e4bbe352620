package data

type RequestStatus string

const (
	StatusRequested RequestStatus = "requested"
	StatusFulfilled RequestStatus = "fulfilled"
	StatusFailed    RequestStatus = "failed"
)

var validTransitions = map[RequestStatus]map[RequestStatus]bool{
	StatusRequested: {
		StatusFulfilled: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether a request may move from one status to another.
// Fulfilled and failed are terminal.
func ValidTransition(from, to RequestStatus) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

func (s RequestStatus) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusFailed
}
