package repository

import (
	"studycoach_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(profile *model.StudentProfile) error {
	return r.DB.Create(profile).Error
}

func (r *StudentRepository) FindByID(id uint) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.First(&profile, id).Error
	return &profile, err
}

func (r *StudentRepository) FindByUserID(userID uint) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

func (r *StudentRepository) FindByGuardianToken(token string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.Where("guardian_view_token = ?", token).First(&profile).Error
	return &profile, err
}

func (r *StudentRepository) Update(profile *model.StudentProfile) error {
	return r.DB.Save(profile).Error
}

// UpdateGuardianToken 传 nil 表示收回访问，列写回 NULL 而不是空串
func (r *StudentRepository) UpdateGuardianToken(studentID uint, token *string) error {
	return r.DB.Model(&model.StudentProfile{}).
		Where("id = ?", studentID).
		Update("guardian_view_token", token).
		Error
}

// HasTeacherLink 判断老师是否被授权管理该学生（主带老师或关联记录）
func (r *StudentRepository) HasTeacherLink(teacherID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TeacherStudentLink{}).
		Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.DB.Model(&model.StudentProfile{}).
		Where("id = ? AND primary_teacher_id = ?", studentID, teacherID).
		Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) CreateLink(link *model.TeacherStudentLink) error {
	return r.DB.Create(link).Error
}

func (r *StudentRepository) ListByTeacher(teacherID uint) ([]*model.StudentProfile, error) {
	var students []*model.StudentProfile
	err := r.DB.
		Joins("LEFT JOIN teacher_student_links ON teacher_student_links.student_id = student_profiles.id AND teacher_student_links.deleted_at IS NULL").
		Where("teacher_student_links.teacher_id = ? OR student_profiles.primary_teacher_id = ?", teacherID, teacherID).
		Distinct().
		Find(&students).Error
	return students, err
}

func (r *StudentRepository) List(page, limit int) ([]*model.StudentProfile, int64, error) {
	var students []*model.StudentProfile
	var total int64

	query := r.DB.Model(&model.StudentProfile{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("full_name").Offset(offset).Limit(limit).Find(&students).Error
	return students, total, err
}
