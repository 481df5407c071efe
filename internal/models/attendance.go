package models

// AttendanceStatus enumerates attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Attendance records a student's presence in a class on a given date.
type Attendance struct {
	AttendanceID string           `db:"attendance_id" json:"attendance_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	ClassID      string           `db:"class_id" json:"class_id"`
	Date         string           `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
}
