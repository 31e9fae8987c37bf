package rental

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusOngoing: true, StatusCancelled: true},
	StatusOngoing:   {StatusReturned: true, StatusCancelled: true},
	StatusReturned:  {},
	StatusCancelled: {},
}

// ActiveStatuses are the statuses counted against availability.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusOngoing}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := validNext[st]
	return st, ok
}

// CanTransition reports whether from -> to is allowed. Same status is a no-op and allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		_, ok := validNext[from]
		return ok
	}
	return validNext[from][to]
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusOngoing
}

func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusCancelled
}
