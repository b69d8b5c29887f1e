package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusPaidFailed Status = "paid_failed" // dibayar tapi provisioning gagal, perlu operator
	StatusCancelled  Status = "cancelled"

	// status lama dari data migrasi; dibaca sebagai completed, tidak pernah ditulis
	statusLegacyPaid Status = "paid"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusCompleted: true, StatusPaidFailed: true, StatusCancelled: true},
	StatusPaidFailed: {StatusPending: true}, // reset oleh operator -> dievaluasi ulang
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsCompleted memperlakukan "paid" legacy setara completed.
func (s Status) IsCompleted() bool {
	return s == StatusCompleted || s == statusLegacyPaid
}

func (s Status) Terminal() bool {
	return s.IsCompleted() || s == StatusCancelled
}
