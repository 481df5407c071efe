package models

// StudentStatus enumerates the student lifecycle states.
type StudentStatus string

const (
	StudentActive   StudentStatus = "Active"
	StudentInactive StudentStatus = "Inactive"
)

// Student is a tuition-center student keyed by its caller-supplied id.
// Date fields hold canonical YYYY-MM-DD strings.
type Student struct {
	StudentID      string        `db:"student_id" json:"student_id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	DateOfBirth    string        `db:"date_of_birth" json:"date_of_birth"`
	Gender         string        `db:"gender" json:"gender"`
	ContactNumber  string        `db:"contact_number" json:"contact_number"`
	Email          string        `db:"email" json:"email"`
	Address        string        `db:"address" json:"address"`
	EnrollmentDate string        `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
}
