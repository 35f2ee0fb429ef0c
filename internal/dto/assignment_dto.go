package dto

import (
	"time"

	"github.com/campusworks/coursework-api/internal/models"
)

// AssignmentCreateRequest creates a new definition owned by the calling
// instructor. DueDate is RFC3339.
type AssignmentCreateRequest struct {
	Title          string   `json:"title" validate:"required,min=2,max=255"`
	Description    string   `json:"description" validate:"required"`
	CourseID       uint     `json:"course_id" validate:"required,gt=0"`
	DueDate        string   `json:"due_date" validate:"required"`
	PointsPossible *float64 `json:"points_possible" validate:"omitempty,gt=0"`
}

// AssignmentUpdateRequest mutates the editable fields of a definition. Course
// and instructor references are fixed at creation and have no update path.
type AssignmentUpdateRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=2,max=255"`
	Description    *string  `json:"description" validate:"omitempty"`
	DueDate        *string  `json:"due_date" validate:"omitempty"`
	PointsPossible *float64 `json:"points_possible" validate:"omitempty,gt=0"`
}

// AssignmentResponse is returned to API clients when viewing definitions.
type AssignmentResponse struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CourseID       uint       `json:"course_id"`
	InstructorID   uint       `json:"instructor_id"`
	DueDate        time.Time  `json:"due_date"`
	PointsPossible float64    `json:"points_possible"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Course         CourseLite `json:"course"`
	Instructor     UserLite   `json:"instructor"`
}

// AssignmentLite summarizes a definition in submission responses.
type AssignmentLite struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	DueDate        time.Time `json:"due_date"`
	PointsPossible float64   `json:"points_possible"`
}

// UserLite summarizes an account without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAssignmentResponse converts an AssignmentDefinition model into a DTO.
func NewAssignmentResponse(model models.AssignmentDefinition) AssignmentResponse {
	response := AssignmentResponse{
		ID:             model.ID,
		Title:          model.Title,
		Description:    model.Description,
		CourseID:       model.CourseID,
		InstructorID:   model.InstructorID,
		DueDate:        model.DueDate,
		PointsPossible: model.PointsPossible,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if model.Course.ID != 0 {
		response.Course = newCourseLite(model.Course)
	}

	if model.Instructor.ID != 0 {
		response.Instructor = UserLite{
			ID:    model.Instructor.ID,
			Name:  model.Instructor.Name,
			Email: model.Instructor.Email,
		}
	}

	return response
}

// NewAssignmentResponseSlice converts definition models into DTOs.
func NewAssignmentResponseSlice(models []models.AssignmentDefinition) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(models))
	for _, assignment := range models {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
