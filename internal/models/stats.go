package models

// EntityCounts reports the cardinality of each collection as of read time.
// The counts are not snapshot-consistent with each other.
type EntityCounts struct {
	Students           int `json:"students"`
	Teachers           int `json:"teachers"`
	Subjects           int `json:"subjects"`
	Classes            int `json:"classes"`
	TeacherAssignments int `json:"teacher_assignments"`
	Payments           int `json:"payments"`
	Attendance         int `json:"attendance"`
	Grades             int `json:"grades"`
}

// TodayIncome is the sum of Paid payments dated today.
type TodayIncome struct {
	TodayIncome float64 `json:"today_income"`
	Date        string  `json:"date"`
}

// TodayClass is an Ongoing class scheduled for the queried day, joined with
// today's attendance and its teacher assignment.
type TodayClass struct {
	ClassID           string             `json:"class_id"`
	ClassName         string             `json:"class_name"`
	SubjectID         string             `json:"subject_id"`
	Day               string             `json:"day"`
	StartTime         *string            `json:"start_time,omitempty"`
	EndTime           *string            `json:"end_time,omitempty"`
	RoomNumber        *string            `json:"room_number,omitempty"`
	Capacity          *int               `json:"capacity,omitempty"`
	Status            ClassStatus        `json:"status"`
	Attendance        []Attendance       `json:"attendance"`
	TeacherAssignment *TeacherAssignment `json:"teacher_assignment,omitempty"`
}

// TodayClassesResponse wraps the day-scoped class view.
type TodayClassesResponse struct {
	TodayClasses []TodayClass `json:"today_classes"`
	Date         string       `json:"date"`
}

// ClassRoster composes a class with its teacher assignment and the distinct
// students seen in its attendance records.
type ClassRoster struct {
	Class             Class              `json:"class"`
	TeacherAssignment *TeacherAssignment `json:"teacher_assignment,omitempty"`
	Students          []Student          `json:"students"`
}
