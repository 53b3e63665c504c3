package service

import (
	"testing"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newItemService(items *MockItemStore, sessions *MockSessionStore, evidence *MockEvidenceStore, students *MockStudentStore) *PlanItemService {
	svc := NewPlanItemService(NewAccessService(students), items, sessions, evidence)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func ownStudent(students *MockStudentStore, userID, studentID uint) {
	profile := &model.StudentProfile{}
	profile.ID = studentID
	students.On("FindByUserID", userID).Return(profile, nil)
}

func publishedItem(id uint) (*model.PlanItem, *model.StudyPlan) {
	item := &model.PlanItem{
		PlanID:         1,
		StudentStatus:  model.StudentPending,
		ReviewStatus:   model.ReviewPending,
		EvidencePolicy: model.EvidenceOptional,
	}
	item.ID = id
	plan := &model.StudyPlan{StudentID: 5, Status: model.PlanPublished}
	plan.ID = 1
	return item, plan
}

func TestStartTimer(t *testing.T) {
	t.Run("promotes pending item to in_progress", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		sessions.On("Create", mock.MatchedBy(func(s *model.TimerSession) bool {
			return s.PlanItemID == 100 && s.StartedAt.Equal(testNow) && s.Source == "timer"
		})).Return(nil)
		items.On("UpdateItemStudentStatus", uint(100), model.StudentInProgress).Return(nil)

		session, err := svc.StartTimer(studentClaims(20), 100, "iPad")
		assert.NoError(t, err)
		assert.Equal(t, "iPad", session.DeviceInfo)
		items.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("in_progress item stays in_progress", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.StudentStatus = model.StudentInProgress
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		sessions.On("Create", mock.Anything).Return(nil)

		_, err := svc.StartTimer(studentClaims(20), 100, "")
		assert.NoError(t, err)
		items.AssertNotCalled(t, "UpdateItemStudentStatus", mock.Anything, mock.Anything)
	})

	t.Run("locked item rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.Locked = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		_, err := svc.StartTimer(studentClaims(20), 100, "")
		assert.ErrorIs(t, err, util.ErrAlreadyLocked)
	})

	t.Run("draft plan rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		plan.Status = model.PlanDraft
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		_, err := svc.StartTimer(studentClaims(20), 100, "")
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})

	t.Run("locked plan rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		plan.Status = model.PlanLocked
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		_, err := svc.StartTimer(studentClaims(20), 100, "")
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})

	t.Run("only the learner may run the timer", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		_, err := svc.StartTimer(teacherClaims(10), 100, "")
		assert.ErrorIs(t, err, util.ErrForbidden)
		items.AssertNotCalled(t, "FindItemWithPlan", mock.Anything)
	})

	t.Run("superseded item invisible", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.Superseded = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		_, err := svc.StartTimer(studentClaims(20), 100, "")
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestStopTimer(t *testing.T) {
	t.Run("settles elapsed seconds on close", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.ActualSeconds = 600
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		session := &model.TimerSession{PlanItemID: 100, StartedAt: testNow.Add(-25 * time.Minute)}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)
		sessions.On("Close", uint(7), uint(100), testNow, 1500).Return(nil)

		result, err := svc.StopTimer(studentClaims(20), 100, 7, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1500, result.SessionSeconds)
		assert.Equal(t, 2100, result.TotalSeconds)
		sessions.AssertExpectations(t)
	})

	t.Run("sane client duration hint sets the end timestamp", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		started := testNow.Add(-25 * time.Minute)
		session := &model.TimerSession{PlanItemID: 100, StartedAt: started}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)
		sessions.On("Close", uint(7), uint(100), started.Add(20*time.Minute), 1200).Return(nil)

		result, err := svc.StopTimer(studentClaims(20), 100, 7, 1200)
		assert.NoError(t, err)
		assert.Equal(t, 1200, result.SessionSeconds)
		sessions.AssertExpectations(t)
	})

	t.Run("hint past server time is ignored", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		session := &model.TimerSession{PlanItemID: 100, StartedAt: testNow.Add(-10 * time.Minute)}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)
		sessions.On("Close", uint(7), uint(100), testNow, 600).Return(nil)

		result, err := svc.StopTimer(studentClaims(20), 100, 7, 3600)
		assert.NoError(t, err)
		assert.Equal(t, 600, result.SessionSeconds)
	})

	t.Run("locked plan still allows closing a leftover session", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		plan.Status = model.PlanLocked
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		session := &model.TimerSession{PlanItemID: 100, StartedAt: testNow.Add(-15 * time.Minute)}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)
		sessions.On("Close", uint(7), uint(100), testNow, 900).Return(nil)

		result, err := svc.StopTimer(studentClaims(20), 100, 7, 0)
		assert.NoError(t, err)
		assert.Equal(t, 900, result.SessionSeconds)
		sessions.AssertExpectations(t)
	})

	t.Run("second close is rejected without touching totals", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		endedAt := testNow.Add(-10 * time.Minute)
		session := &model.TimerSession{PlanItemID: 100, StartedAt: testNow.Add(-30 * time.Minute), EndedAt: &endedAt}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)

		_, err := svc.StopTimer(studentClaims(20), 100, 7, 0)
		assert.ErrorIs(t, err, util.ErrAlreadyStopped)
		sessions.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clock skew never yields negative seconds", func(t *testing.T) {
		items := new(MockItemStore)
		sessions := new(MockSessionStore)
		students := new(MockStudentStore)
		svc := newItemService(items, sessions, new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		session := &model.TimerSession{PlanItemID: 100, StartedAt: testNow.Add(2 * time.Minute)}
		session.ID = 7
		sessions.On("FindForItem", uint(7), uint(100)).Return(session, nil)
		sessions.On("Close", uint(7), uint(100), testNow, 0).Return(nil)

		result, err := svc.StopTimer(studentClaims(20), 100, 7, 0)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.SessionSeconds)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("optional policy submits without evidence", func(t *testing.T) {
		items := new(MockItemStore)
		evidence := new(MockEvidenceStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), evidence, students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		items.On("SubmitItem", uint(100), "完成了", 15, testNow).Return(nil)

		err := svc.Submit(studentClaims(20), 100, &SubmitRequest{Comment: "完成了", ManualMinutes: 15})
		assert.NoError(t, err)
		evidence.AssertNotCalled(t, "CountLiveByItem", mock.Anything, mock.Anything)
	})

	t.Run("audio policy without evidence rejected", func(t *testing.T) {
		items := new(MockItemStore)
		evidence := new(MockEvidenceStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), evidence, students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.EvidencePolicy = model.EvidenceAudio
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		evidence.On("CountLiveByItem", uint(100), model.EvidenceKindAudio).Return(int64(0), nil)

		err := svc.Submit(studentClaims(20), 100, &SubmitRequest{})
		assert.ErrorIs(t, err, util.ErrPolicyViolation)
		items.AssertNotCalled(t, "SubmitItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("required policy accepts any live evidence", func(t *testing.T) {
		items := new(MockItemStore)
		evidence := new(MockEvidenceStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), evidence, students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.EvidencePolicy = model.EvidenceRequired
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		evidence.On("CountLiveByItem", uint(100), model.EvidenceKind("")).Return(int64(2), nil)
		items.On("SubmitItem", uint(100), "", 0, testNow).Return(nil)

		err := svc.Submit(studentClaims(20), 100, &SubmitRequest{})
		assert.NoError(t, err)
		items.AssertExpectations(t)
	})

	t.Run("negative manual minutes rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.Submit(studentClaims(20), 100, &SubmitRequest{ManualMinutes: -5})
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})

	t.Run("reviewed item rejected", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.ReviewStatus = model.ReviewApproved
		item.Locked = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.Submit(studentClaims(20), 100, &SubmitRequest{})
		assert.ErrorIs(t, err, util.ErrAlreadyLocked)
	})

	t.Run("coach may not submit on the learner's behalf", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		err := svc.Submit(teacherClaims(10), 100, &SubmitRequest{})
		assert.ErrorIs(t, err, util.ErrForbidden)
		items.AssertNotCalled(t, "FindItemWithPlan", mock.Anything)
	})
}

func TestSelfReset(t *testing.T) {
	t.Run("student withdraws submission", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.StudentStatus = model.StudentSubmitted
		item.StudentResetCount = 1
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		items.On("ResetItem", uint(100), util.MaxStudentResets).Return(nil)

		err := svc.SelfReset(studentClaims(20), 100)
		assert.NoError(t, err)
		items.AssertExpectations(t)
	})

	t.Run("reset quota exhausted", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.StudentResetCount = util.MaxStudentResets
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.SelfReset(studentClaims(20), 100)
		assert.ErrorIs(t, err, util.ErrResetLimitReached)
		items.AssertNotCalled(t, "ResetItem", mock.Anything, mock.Anything)
	})

	t.Run("reviewed item cannot be reset", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		ownStudent(students, 20, 5)
		item, plan := publishedItem(100)
		item.ReviewStatus = model.ReviewRejected
		item.Locked = true
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.SelfReset(studentClaims(20), 100)
		assert.ErrorIs(t, err, util.ErrAlreadyReviewed)
	})

	t.Run("only students may self reset", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		err := svc.SelfReset(teacherClaims(10), 100)
		assert.ErrorIs(t, err, util.ErrForbidden)
		items.AssertNotCalled(t, "FindItemWithPlan", mock.Anything)
	})
}

func TestResetTime(t *testing.T) {
	t.Run("coach clears all timing", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		item, plan := publishedItem(100)
		item.ActualSeconds = 3600
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
		items.On("ResetItemTime", uint(100), testNow).Return(nil)

		err := svc.ResetTime(teacherClaims(10), 100)
		assert.NoError(t, err)
		items.AssertExpectations(t)
	})

	t.Run("student may not clear timing", func(t *testing.T) {
		items := new(MockItemStore)
		students := new(MockStudentStore)
		svc := newItemService(items, new(MockSessionStore), new(MockEvidenceStore), students)

		item, plan := publishedItem(100)
		items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)

		err := svc.ResetTime(studentClaims(20), 100)
		assert.ErrorIs(t, err, util.ErrForbidden)
		items.AssertNotCalled(t, "ResetItemTime", mock.Anything, mock.Anything)
	})
}

func TestVoidSession(t *testing.T) {
	items := new(MockItemStore)
	sessions := new(MockSessionStore)
	students := new(MockStudentStore)
	svc := newItemService(items, sessions, new(MockEvidenceStore), students)

	students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
	item, plan := publishedItem(100)
	items.On("FindItemWithPlan", uint(100)).Return(item, plan, nil)
	sessions.On("Void", uint(7), uint(100)).Return(nil)

	err := svc.VoidSession(teacherClaims(10), 100, 7)
	assert.NoError(t, err)
	sessions.AssertExpectations(t)
}
