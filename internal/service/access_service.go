package service

import (
	"errors"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

// AccessStudentStore 访问检查所需的学生档案查询
type AccessStudentStore interface {
	FindByID(id uint) (*model.StudentProfile, error)
	FindByUserID(userID uint) (*model.StudentProfile, error)
	HasTeacherLink(teacherID, studentID uint) (bool, error)
}

// AccessService 集中所有"谁能动哪个学生"的判定，
// controller 和其他 service 一律通过它做访问检查
type AccessService struct {
	Students AccessStudentStore
}

func NewAccessService(students AccessStudentStore) *AccessService {
	return &AccessService{Students: students}
}

// AuthorizeStudent 判定操作者能否访问指定学生：
// 管理员全通过；老师/助教需要授权关系；学生只能访问自己；家长走访问令牌，不走这里
func (s *AccessService) AuthorizeStudent(claims *util.Claims, studentID uint) error {
	if claims == nil {
		return util.ErrForbidden
	}

	switch claims.Role {
	case model.Admin:
		return nil
	case model.Teacher, model.Assistant:
		ok, err := s.Students.HasTeacherLink(claims.UserID, studentID)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrForbidden
		}
		return nil
	case model.Student:
		profile, err := s.Students.FindByUserID(claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrForbidden
			}
			return err
		}
		if profile.ID != studentID {
			return util.ErrForbidden
		}
		return nil
	}
	return util.ErrForbidden
}

// ResolveOwnStudent 学生端接口：由登录账号反查本人档案
func (s *AccessService) ResolveOwnStudent(claims *util.Claims) (*model.StudentProfile, error) {
	if claims == nil || claims.Role != model.Student {
		return nil, util.ErrForbidden
	}
	profile, err := s.Students.FindByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrForbidden
		}
		return nil, err
	}
	return profile, nil
}

// RequireCoach 写操作入口：学生本人之外只有管理员和授权老师/助教可以改计划
func (s *AccessService) RequireCoach(claims *util.Claims, studentID uint) error {
	if claims == nil {
		return util.ErrForbidden
	}
	if claims.Role == model.Student || claims.Role == model.Parent {
		return util.ErrForbidden
	}
	return s.AuthorizeStudent(claims, studentID)
}
