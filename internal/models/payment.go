package models

// PaymentStatus enumerates payment settlement states.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// Payment records a tuition payment. PaymentID is system-allocated in the
// PAYnnn format; StudentID and ClassID must reference existing rows.
type Payment struct {
	PaymentID   string        `db:"payment_id" json:"payment_id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	ClassID     string        `db:"class_id" json:"class_id"`
	Amount      float64       `db:"amount" json:"amount"`
	PaymentDate string        `db:"payment_date" json:"payment_date"`
	Month       string        `db:"month" json:"month"`
	Year        string        `db:"year" json:"year"`
	Status      PaymentStatus `db:"status" json:"status"`
}
