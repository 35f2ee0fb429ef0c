package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmittedFile captures the stored-file reference returned by the file store.
// All fields are snapshots taken at submission time.
type SubmittedFile struct {
	OriginalName string `gorm:"size:255" json:"original_name,omitempty"`
	MimeType     string `gorm:"size:128" json:"mime_type,omitempty"`
	StoredName   string `gorm:"size:255" json:"stored_name,omitempty"`
	StoredPath   string `gorm:"size:512" json:"stored_path,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

// Present reports whether a file was attached to the submission.
func (f SubmittedFile) Present() bool {
	return f.StoredName != ""
}

// Submission records a student's single piece of work against one assignment
// definition. The composite unique index is the safety mechanism for the
// one-submission-per-pair rule; application pre-checks are an optimization.
//
// CourseID is denormalized from the definition at creation time and is not
// kept in sync with later definition edits. IsLate is computed once at
// creation and never recomputed.
type Submission struct {
	ID                     uint                 `gorm:"primaryKey" json:"id"`
	AssignmentDefinitionID uint                 `gorm:"not null;uniqueIndex:idx_submissions_pair" json:"assignment_definition_id"`
	StudentID              uint                 `gorm:"not null;uniqueIndex:idx_submissions_pair" json:"student_id"`
	CourseID               uint                 `gorm:"not null;index" json:"course_id"`
	SubmissionText         string               `gorm:"type:text" json:"submission_text,omitempty"`
	SubmittedFile          SubmittedFile        `gorm:"embedded;embeddedPrefix:file_" json:"submitted_file"`
	SubmissionDate         time.Time            `gorm:"not null" json:"submission_date"`
	Grade                  *float64             `json:"grade"`
	Feedback               *string              `gorm:"type:text" json:"feedback"`
	IsLate                 bool                 `gorm:"not null" json:"is_late"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
	AssignmentDefinition   AssignmentDefinition `json:"assignment_definition"`
	Student                User                 `gorm:"foreignKey:StudentID" json:"student"`
	Course                 Course               `json:"course"`
}

// IsGraded reports whether an instructor has recorded a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}

// GradeEvent is an append-only record of a grading action. The current
// grade/feedback on the submission is always the latest event's values.
type GradeEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"not null;index" json:"submission_id"`
	GradedBy     uint           `gorm:"not null" json:"graded_by"`
	Score        float64        `gorm:"not null" json:"score"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	Payload      datatypes.JSON `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
