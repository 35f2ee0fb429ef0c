package dto

import (
	"time"

	"github.com/campusworks/coursework-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submitting work.
// The file part, when present, travels alongside as *multipart.FileHeader.
type SubmissionCreateRequest struct {
	SubmissionText string `form:"submission_text"`
}

// GradeSubmissionRequest records a grading action. Feedback must be present in
// the payload; an empty string is a valid (if curt) piece of feedback, an
// absent field is not.
type GradeSubmissionRequest struct {
	Grade    *float64 `json:"grade" validate:"required"`
	Feedback *string  `json:"feedback" validate:"required"`
}

// SubmittedFileResponse echoes the stored-file reference.
type SubmittedFileResponse struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                     uint                   `json:"id"`
	AssignmentDefinitionID uint                   `json:"assignment_definition_id"`
	StudentID              uint                   `json:"student_id"`
	CourseID               uint                   `json:"course_id"`
	SubmissionText         string                 `json:"submission_text,omitempty"`
	SubmittedFile          *SubmittedFileResponse `json:"submitted_file,omitempty"`
	SubmissionDate         time.Time              `json:"submission_date"`
	Grade                  *float64               `json:"grade"`
	Feedback               *string                `json:"feedback"`
	IsLate                 bool                   `json:"is_late"`
	AssignmentDefinition   AssignmentLite         `json:"assignment_definition"`
	Course                 CourseLite             `json:"course"`
	Student                UserLite               `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:                     model.ID,
		AssignmentDefinitionID: model.AssignmentDefinitionID,
		StudentID:              model.StudentID,
		CourseID:               model.CourseID,
		SubmissionText:         model.SubmissionText,
		SubmissionDate:         model.SubmissionDate,
		Grade:                  model.Grade,
		Feedback:               model.Feedback,
		IsLate:                 model.IsLate,
	}

	if model.SubmittedFile.Present() {
		response.SubmittedFile = &SubmittedFileResponse{
			OriginalName: model.SubmittedFile.OriginalName,
			MimeType:     model.SubmittedFile.MimeType,
			SizeBytes:    model.SubmittedFile.SizeBytes,
		}
	}

	if model.AssignmentDefinition.ID != 0 {
		response.AssignmentDefinition = AssignmentLite{
			ID:             model.AssignmentDefinition.ID,
			Title:          model.AssignmentDefinition.Title,
			DueDate:        model.AssignmentDefinition.DueDate,
			PointsPossible: model.AssignmentDefinition.PointsPossible,
		}
	}

	if model.Course.ID != 0 {
		response.Course = newCourseLite(model.Course)
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
