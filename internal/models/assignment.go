package models

import "time"

// DefaultPointsPossible is applied when an assignment definition is created
// without an explicit maximum score.
const DefaultPointsPossible = 100

// AssignmentDefinition is an instructor-authored task students submit work
// against. Course and instructor references are fixed at creation.
type AssignmentDefinition struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	InstructorID   uint      `gorm:"not null;index" json:"instructor_id"`
	DueDate        time.Time `gorm:"not null" json:"due_date"`
	PointsPossible float64   `gorm:"not null;default:100" json:"points_possible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Course         Course    `json:"course"`
	Instructor     User      `gorm:"foreignKey:InstructorID" json:"instructor"`
}

// IsPastDue reports whether the deadline has already passed at the given instant.
func (a AssignmentDefinition) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// OwnedBy reports whether the definition belongs to the given instructor.
func (a AssignmentDefinition) OwnedBy(instructorID uint) bool {
	return a.InstructorID == instructorID
}
