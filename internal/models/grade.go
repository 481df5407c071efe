package models

// Grade records a student's score for a subject in a class.
type Grade struct {
	GradeID   string  `db:"grade_id" json:"grade_id"`
	StudentID string  `db:"student_id" json:"student_id"`
	ClassID   string  `db:"class_id" json:"class_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	Score     float64 `db:"score" json:"score"`
	Date      string  `db:"date" json:"date"`
}
