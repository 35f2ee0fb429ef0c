package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/models"
)

// SubmissionRepository defines data operations for the submission ledger.
type SubmissionRepository interface {
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentDefID uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByPair(ctx context.Context, assignmentDefID, studentID uint) (models.Submission, error)
	CountByStudent(ctx context.Context, studentID uint) (int64, error)
	CountByAssignment(ctx context.Context, assignmentDefID uint) (int64, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateGrade(ctx context.Context, id uint, grade float64, feedback string, event *models.GradeEvent) (models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("AssignmentDefinition").
		Preload("Student").
		Preload("Course")
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("submission_date DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentDefID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_definition_id = ?", assignmentDefID).
		Order("submission_date ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByPair(ctx context.Context, assignmentDefID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_definition_id = ?", assignmentDefID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) CountByAssignment(ctx context.Context, assignmentDefID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_definition_id = ?", assignmentDefID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// UpdateGrade overwrites grade and feedback and appends the history event in a
// single transaction.
func (r *submissionRepository) UpdateGrade(ctx context.Context, id uint, grade float64, feedback string, event *models.GradeEvent) (models.Submission, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Submission{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"grade":    grade,
				"feedback": feedback,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Submission{}, err
	}

	return r.GetByID(ctx, id)
}
