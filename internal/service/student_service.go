package service

import (
	"errors"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentService 学生档案与师生授权关系的维护
type StudentService struct {
	Repo   *repository.StudentRepository
	Users  *repository.UserRepository
	Access *AccessService
}

func NewStudentService(repo *repository.StudentRepository, users *repository.UserRepository, access *AccessService) *StudentService {
	return &StudentService{Repo: repo, Users: users, Access: access}
}

type CreateStudentRequest struct {
	UserID           *uint  `json:"userId"`
	FullName         string `json:"fullName" binding:"required"`
	Nickname         string `json:"nickname"`
	GradeLevel       string `json:"gradeLevel"`
	ExamTarget       string `json:"examTarget"`
	GuardianName     string `json:"guardianName"`
	GuardianContact  string `json:"guardianContact"`
	Notes            string `json:"notes"`
	PrimaryTeacherID *uint  `json:"primaryTeacherId"`
}

func (s *StudentService) Create(claims *util.Claims, req *CreateStudentRequest) (*model.StudentProfile, error) {
	if claims.Role != model.Admin && claims.Role != model.Teacher {
		return nil, util.ErrForbidden
	}

	if req.UserID != nil {
		user, err := s.Users.FindByID(*req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrNotFound
			}
			return nil, err
		}
		if user.Role != model.Student {
			return nil, util.ErrInvalidStatus
		}
	}

	profile := &model.StudentProfile{
		UserID:           req.UserID,
		FullName:         req.FullName,
		Nickname:         req.Nickname,
		GradeLevel:       req.GradeLevel,
		ExamTarget:       req.ExamTarget,
		GuardianName:     req.GuardianName,
		GuardianContact:  req.GuardianContact,
		Notes:            req.Notes,
		PrimaryTeacherID: req.PrimaryTeacherID,
	}
	if profile.PrimaryTeacherID == nil && claims.Role == model.Teacher {
		profile.PrimaryTeacherID = &claims.UserID
	}

	if err := s.Repo.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *StudentService) Get(claims *util.Claims, studentID uint) (*model.StudentProfile, error) {
	if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
		return nil, err
	}
	profile, err := s.Repo.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *StudentService) Update(claims *util.Claims, studentID uint, req *CreateStudentRequest) (*model.StudentProfile, error) {
	if err := s.Access.RequireCoach(claims, studentID); err != nil {
		return nil, err
	}
	profile, err := s.Repo.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	profile.FullName = req.FullName
	profile.Nickname = req.Nickname
	profile.GradeLevel = req.GradeLevel
	profile.ExamTarget = req.ExamTarget
	profile.GuardianName = req.GuardianName
	profile.GuardianContact = req.GuardianContact
	profile.Notes = req.Notes
	if req.PrimaryTeacherID != nil {
		profile.PrimaryTeacherID = req.PrimaryTeacherID
	}

	if err := s.Repo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListMine 老师看自己带的学生，管理员看全部
func (s *StudentService) ListMine(claims *util.Claims, page, limit int) ([]*model.StudentProfile, int64, error) {
	if claims.Role == model.Admin {
		return s.Repo.List(page, limit)
	}
	if claims.Role != model.Teacher && claims.Role != model.Assistant {
		return nil, 0, util.ErrForbidden
	}
	students, err := s.Repo.ListByTeacher(claims.UserID)
	if err != nil {
		return nil, 0, err
	}
	return students, int64(len(students)), nil
}

type LinkRequest struct {
	TeacherID uint   `json:"teacherId" binding:"required"`
	Role      string `json:"role"`
}

// Link 给学生加一位授权老师/助教
func (s *StudentService) Link(claims *util.Claims, studentID uint, req *LinkRequest) error {
	if claims.Role != model.Admin && claims.Role != model.Teacher {
		return util.ErrForbidden
	}
	if claims.Role == model.Teacher {
		if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
			return err
		}
	}

	teacher, err := s.Users.FindByID(req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if teacher.Role != model.Teacher && teacher.Role != model.Assistant {
		return util.ErrInvalidStatus
	}

	role := model.LinkRole(req.Role)
	if role != model.LinkCoach && role != model.LinkReviewer {
		role = model.LinkCoach
	}

	return s.Repo.CreateLink(&model.TeacherStudentLink{
		TeacherID: req.TeacherID,
		StudentID: studentID,
		Role:      role,
		CreatedBy: claims.UserID,
	})
}

// RotateGuardianToken 轮换家长访问令牌，旧链接立即失效
func (s *StudentService) RotateGuardianToken(claims *util.Claims, studentID uint) (string, error) {
	if err := s.Access.RequireCoach(claims, studentID); err != nil {
		return "", err
	}
	token := uuid.New().String()
	if err := s.Repo.UpdateGuardianToken(studentID, &token); err != nil {
		return "", err
	}
	return token, nil
}

// RevokeGuardianToken 收回家长访问，令牌列回到 NULL
func (s *StudentService) RevokeGuardianToken(claims *util.Claims, studentID uint) error {
	if err := s.Access.RequireCoach(claims, studentID); err != nil {
		return err
	}
	return s.Repo.UpdateGuardianToken(studentID, nil)
}
