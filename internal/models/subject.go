package models

// SubjectLevel enumerates difficulty levels.
type SubjectLevel string

const (
	LevelBeginner     SubjectLevel = "Beginner"
	LevelIntermediate SubjectLevel = "Intermediate"
	LevelAdvanced     SubjectLevel = "Advanced"
)

// Subject is a taught subject keyed by its caller-supplied id.
type Subject struct {
	SubjectID   string       `db:"subject_id" json:"subject_id"`
	SubjectName string       `db:"subject_name" json:"subject_name"`
	Description *string      `db:"description" json:"description,omitempty"`
	Level       SubjectLevel `db:"level" json:"level"`
}
