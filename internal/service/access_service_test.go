package service

import (
	"testing"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestAuthorizeStudent(t *testing.T) {
	t.Run("admin passes without lookup", func(t *testing.T) {
		students := new(MockStudentStore)
		svc := NewAccessService(students)

		assert.NoError(t, svc.AuthorizeStudent(adminClaims(), 5))
		students.AssertNotCalled(t, "HasTeacherLink", uint(1), uint(5))
	})

	t.Run("teacher needs a link", func(t *testing.T) {
		students := new(MockStudentStore)
		svc := NewAccessService(students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(false, nil)
		assert.ErrorIs(t, svc.AuthorizeStudent(teacherClaims(10), 5), util.ErrForbidden)
	})

	t.Run("student only sees own profile", func(t *testing.T) {
		students := new(MockStudentStore)
		svc := NewAccessService(students)

		profile := &model.StudentProfile{}
		profile.ID = 5
		students.On("FindByUserID", uint(20)).Return(profile, nil)

		assert.NoError(t, svc.AuthorizeStudent(studentClaims(20), 5))
		assert.ErrorIs(t, svc.AuthorizeStudent(studentClaims(20), 6), util.ErrForbidden)
	})

	t.Run("student without profile denied", func(t *testing.T) {
		students := new(MockStudentStore)
		svc := NewAccessService(students)

		students.On("FindByUserID", uint(21)).Return(nil, gorm.ErrRecordNotFound)
		assert.ErrorIs(t, svc.AuthorizeStudent(studentClaims(21), 5), util.ErrForbidden)
	})

	t.Run("parent role never passes here", func(t *testing.T) {
		students := new(MockStudentStore)
		svc := NewAccessService(students)

		claims := &util.Claims{UserID: 30, Role: model.Parent}
		assert.ErrorIs(t, svc.AuthorizeStudent(claims, 5), util.ErrForbidden)
	})
}

func TestRequireCoach(t *testing.T) {
	students := new(MockStudentStore)
	svc := NewAccessService(students)

	assert.ErrorIs(t, svc.RequireCoach(studentClaims(20), 5), util.ErrForbidden)
	assert.ErrorIs(t, svc.RequireCoach(nil, 5), util.ErrForbidden)
	assert.NoError(t, svc.RequireCoach(adminClaims(), 5))
}
