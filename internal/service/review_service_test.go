package service

import (
	"testing"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newReviewService(items *MockItemStore, logs *MockReviewLogStore, students *MockStudentStore) *ReviewService {
	svc := NewReviewService(NewAccessService(students), items, logs)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func submittedItem(id uint) (*model.PlanItem, *model.StudyPlan) {
	item, plan := publishedItem(id)
	item.StudentStatus = model.StudentSubmitted
	return item, plan
}

func TestReview(t *testing.T) {
	t.Run("approves submitted item", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		item, plan := submittedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		items.On("ApplyReview", uint(100), uint(10), model.ReviewPending, model.ReviewApproved,
			"不错", model.OriginManual, testNow, false).Return(nil)

		err := svc.Review(teacherClaims(10), 100, &ReviewRequest{Status: "approved", Comment: "不错"})
		assert.NoError(t, err)
		items.AssertExpectations(t)
	})

	t.Run("non-terminal status rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		err := svc.Review(teacherClaims(10), 100, &ReviewRequest{Status: "pending"})
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
		items.AssertNotCalled(t, "FindItemWithPlan", mock.Anything)
	})

	t.Run("unsubmitted item rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		item, plan := publishedItem(100)
		item.StudentStatus = model.StudentInProgress
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.Review(teacherClaims(10), 100, &ReviewRequest{Status: "rejected"})
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})

	t.Run("second review loses", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		item, plan := submittedItem(100)
		item.ReviewStatus = model.ReviewApproved
		item.Locked = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.Review(teacherClaims(10), 100, &ReviewRequest{Status: "rejected"})
		assert.ErrorIs(t, err, util.ErrAlreadyLocked)
		items.AssertNotCalled(t, "ApplyReview", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("student cannot review", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		item, plan := submittedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.Review(studentClaims(20), 100, &ReviewRequest{Status: "approved"})
		assert.ErrorIs(t, err, util.ErrForbidden)
	})
}

func TestBulkReview(t *testing.T) {
	t.Run("failures are reported per item", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)

		ok, plan := submittedItem(101)
		items.On("FindItemWithPlan", uint(101)).Return(ok, plan, nil)
		items.On("ApplyReview", uint(101), uint(10), model.ReviewPending, model.ReviewApproved,
			"", model.OriginBulk, testNow, false).Return(nil)

		locked, _ := submittedItem(102)
		locked.Locked = true
		locked.ReviewStatus = model.ReviewPartial
		items.On("FindItemWithPlan", uint(102)).Return(locked, plan, nil)

		items.On("FindItemWithPlan", uint(103)).Return(nil, nil, gorm.ErrRecordNotFound)

		results, err := svc.BulkReview(teacherClaims(10), &BulkReviewRequest{
			ItemIDs: []uint{101, 102, 103},
			Status:  "approved",
		})
		assert.NoError(t, err)
		assert.Len(t, results, 3)
		assert.True(t, results[0].OK)
		assert.False(t, results[1].OK)
		assert.Equal(t, "already_locked", results[1].Error)
		assert.False(t, results[2].OK)
		assert.Equal(t, "not_found", results[2].Error)
	})

	t.Run("invalid status fails whole request", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		_, err := svc.BulkReview(teacherClaims(10), &BulkReviewRequest{
			ItemIDs: []uint{101},
			Status:  "maybe",
		})
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})
}

func TestOverride(t *testing.T) {
	t.Run("admin rewrites locked verdict", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		item, plan := submittedItem(100)
		item.ReviewStatus = model.ReviewRejected
		item.Locked = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		items.On("ApplyReview", uint(100), uint(1), model.ReviewRejected, model.ReviewApproved,
			"申诉通过", model.OriginAdmin, testNow, true).Return(nil)

		err := svc.Override(adminClaims(), 100, &ReviewRequest{Status: "approved", Comment: "申诉通过"})
		assert.NoError(t, err)
		items.AssertExpectations(t)
	})

	t.Run("teacher cannot override", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newReviewService(items, new(MockReviewLogStore), students)

		err := svc.Override(teacherClaims(10), 100, &ReviewRequest{Status: "approved"})
		assert.ErrorIs(t, err, util.ErrForbidden)
		items.AssertNotCalled(t, "FindItemWithPlan", mock.Anything)
	})
}

func TestReviewHistory(t *testing.T) {
	items := new(MockItemStore)
	logs := new(MockReviewLogStore)
	students := new(MockStudentStore)
	svc := newReviewService(items, logs, students)

	ownStudent(students, 20, 5)
	item, plan := submittedItem(100)
	items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
	logs.On("ListByItem", uint(100)).Return([]*model.ReviewLog{
		{PlanItemID: 100, ToStatus: model.ReviewRejected},
		{PlanItemID: 100, ToStatus: model.ReviewApproved},
	}, nil)

	history, err := svc.History(studentClaims(20), 100)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
}
