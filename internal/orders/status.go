package orders

// Status is the order-level state, set only server-side after submission.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
	StatusModified Status = "Modified"
	StatusApproved Status = "Approved"
)

// LineStatus is the per-line review state.
type LineStatus string

const (
	LineStatusPending  LineStatus = "Pending"
	LineStatusAccepted LineStatus = "Accepted"
	LineStatusRejected LineStatus = "Rejected"
	LineStatusModified LineStatus = "Modified"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusAccepted: true, StatusRejected: true, StatusModified: true, StatusApproved: true},
	StatusModified: {StatusAccepted: true, StatusRejected: true},
	StatusAccepted: {StatusApproved: true},
	StatusRejected: {},
	StatusApproved: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
