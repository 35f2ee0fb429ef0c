package dto

import (
	"time"

	"github.com/campusworks/coursework-api/internal/models"
)

// CourseCreateRequest adds a catalog entry. The code must be unique.
type CourseCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Code string `json:"code" validate:"required,min=2,max=64"`
}

// CourseUpdateRequest renames a course. The code is immutable after creation.
type CourseUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// CourseResponse is returned to API clients when viewing courses.
type CourseResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseLite summarizes a course inside other responses.
type CourseLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:        model.ID,
		Name:      model.Name,
		Code:      model.Code,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(models []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(models))
	for _, course := range models {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

func newCourseLite(model models.Course) CourseLite {
	return CourseLite{
		ID:   model.ID,
		Name: model.Name,
		Code: model.Code,
	}
}
