package models

// TeacherStatus enumerates the teacher lifecycle states.
type TeacherStatus string

const (
	TeacherActive   TeacherStatus = "Active"
	TeacherInactive TeacherStatus = "Inactive"
)

// Teacher is a tuition-center teacher keyed by its caller-supplied id.
type Teacher struct {
	TeacherID      string        `db:"teacher_id" json:"teacher_id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	ContactNumber  string        `db:"contact_number" json:"contact_number"`
	Email          string        `db:"email" json:"email"`
	Address        string        `db:"address" json:"address"`
	HireDate       string        `db:"hire_date" json:"hire_date"`
	Specialization string        `db:"specialization" json:"specialization"`
	Status         TeacherStatus `db:"status" json:"status"`
}
