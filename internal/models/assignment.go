package models

// TeacherAssignment links a teacher to a class. Aggregate views treat the
// first assignment found as "the" teacher of a class; the model does not
// enforce one assignment per class.
type TeacherAssignment struct {
	AssignmentID   string `db:"assignment_id" json:"assignment_id"`
	TeacherID      string `db:"teacher_id" json:"teacher_id"`
	ClassID        string `db:"class_id" json:"class_id"`
	AssignmentDate string `db:"assignment_date" json:"assignment_date"`
}
