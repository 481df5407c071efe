package models

// ClassStatus enumerates the class lifecycle states.
type ClassStatus string

const (
	ClassOngoing   ClassStatus = "Ongoing"
	ClassCompleted ClassStatus = "Completed"
	ClassCancelled ClassStatus = "Cancelled"
)

// Class is a scheduled class. SubjectID must reference an existing Subject.
type Class struct {
	ClassID    string      `db:"class_id" json:"class_id"`
	ClassName  string      `db:"class_name" json:"class_name"`
	SubjectID  string      `db:"subject_id" json:"subject_id"`
	Day        string      `db:"day" json:"day"`
	StartTime  string      `db:"start_time" json:"start_time"`
	EndTime    string      `db:"end_time" json:"end_time"`
	RoomNumber *string     `db:"room_number" json:"room_number,omitempty"`
	Capacity   int         `db:"capacity" json:"capacity"`
	Status     ClassStatus `db:"status" json:"status"`
}
