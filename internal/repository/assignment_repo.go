package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/models"
)

// AssignmentFilter narrows definition queries. A nil InstructorID returns all
// definitions (the student view has no enrollment scoping).
type AssignmentFilter struct {
	InstructorID *uint
	CourseID     *uint
}

// AssignmentRepository defines persistence operations for assignment definitions.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]models.AssignmentDefinition, error)
	GetByID(ctx context.Context, id uint) (models.AssignmentDefinition, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	CountByInstructor(ctx context.Context, instructorID uint) (int64, error)
	Create(ctx context.Context, definition *models.AssignmentDefinition) error
	Update(ctx context.Context, definition *models.AssignmentDefinition) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AssignmentDefinition{}).
		Preload("Course").
		Preload("Instructor")
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.AssignmentDefinition, error) {
	query := r.baseQuery(ctx)

	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	var definitions []models.AssignmentDefinition
	if err := query.Order("due_date ASC").Find(&definitions).Error; err != nil {
		return nil, err
	}

	return definitions, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.AssignmentDefinition, error) {
	var definition models.AssignmentDefinition
	if err := r.baseQuery(ctx).First(&definition, id).Error; err != nil {
		return models.AssignmentDefinition{}, err
	}

	return definition, nil
}

func (r *assignmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssignmentDefinition{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountByInstructor(ctx context.Context, instructorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssignmentDefinition{}).
		Where("instructor_id = ?", instructorID).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepository) Create(ctx context.Context, definition *models.AssignmentDefinition) error {
	return r.db.WithContext(ctx).Create(definition).Error
}

func (r *assignmentRepository) Update(ctx context.Context, definition *models.AssignmentDefinition) error {
	return r.db.WithContext(ctx).Save(definition).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AssignmentDefinition{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
