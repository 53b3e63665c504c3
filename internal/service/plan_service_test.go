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

func adminClaims() *util.Claims {
	return &util.Claims{UserID: 1, Role: model.Admin}
}

func teacherClaims(id uint) *util.Claims {
	return &util.Claims{UserID: id, Role: model.Teacher}
}

func studentClaims(id uint) *util.Claims {
	return &util.Claims{UserID: id, Role: model.Student}
}

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newPlanService(plans *MockPlanStore, catalog *MockCatalogReader, templates *MockTemplateReader, students *MockStudentStore) *PlanService {
	svc := NewPlanService(NewAccessService(students), plans, catalog, templates)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func TestCreatePlan(t *testing.T) {
	itemReqs := []PlanItemRequest{
		{ExamSystem: "雅思", Module: "听力", TaskName: "剑桥真题精听", PlannedMinutes: 30, EvidencePolicy: "audio"},
		{ExamSystem: "雅思", Module: "写作", TaskName: "大作文一篇", PlannedMinutes: 45},
	}

	t.Run("creates new plan with ordered items", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		plans.On("CreateWithItems", mock.MatchedBy(func(p *model.StudyPlan) bool {
			return p.StudentID == 5 &&
				p.Status == model.PlanPublished &&
				len(p.Items) == 2 &&
				p.Items[0].OrderIndex == 0 &&
				p.Items[1].OrderIndex == 1 &&
				p.Items[0].EvidencePolicy == model.EvidenceAudio &&
				p.Items[1].EvidencePolicy == model.EvidenceOptional
		})).Return(nil)

		plan, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
			Publish:   true,
		})
		assert.NoError(t, err)
		assert.NotNil(t, plan.PublishedAt)
		plans.AssertExpectations(t)
	})

	t.Run("rejects duplicate without replace", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		existing := &model.StudyPlan{StudentID: 5, Status: model.PlanPublished}
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(existing, nil)

		_, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
		})
		assert.ErrorIs(t, err, util.ErrDuplicatePlan)
		plans.AssertNotCalled(t, "CreateWithItems", mock.Anything)
	})

	t.Run("concurrent duplicate surfaces plan_exists", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		plans.On("CreateWithItems", mock.Anything).Return(util.ErrDuplicatePlan)

		_, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
		})
		assert.ErrorIs(t, err, util.ErrDuplicatePlan)
	})

	t.Run("replace supersedes old items", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		existing := &model.StudyPlan{StudentID: 5, Status: model.PlanDraft}
		existing.ID = 77
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(existing, nil)
		plans.On("ReplaceItems", existing, mock.MatchedBy(func(items []model.PlanItem) bool {
			return len(items) == 2
		})).Return(nil)
		plans.On("FindByID", uint(77)).Return(existing, nil)

		_, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
			Replace:   true,
		})
		assert.NoError(t, err)
		plans.AssertExpectations(t)
	})

	t.Run("replace of locked plan rejected", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(true, nil)
		existing := &model.StudyPlan{StudentID: 5, Status: model.PlanLocked}
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(existing, nil)

		_, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
			Replace:   true,
		})
		assert.ErrorIs(t, err, util.ErrAlreadyLocked)
	})

	t.Run("unlinked teacher forbidden", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		students.On("HasTeacherLink", uint(10), uint(5)).Return(false, nil)

		_, err := svc.CreatePlan(teacherClaims(10), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
		})
		assert.ErrorIs(t, err, util.ErrForbidden)
	})

	t.Run("student cannot create plans", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		_, err := svc.CreatePlan(studentClaims(5), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     itemReqs,
		})
		assert.ErrorIs(t, err, util.ErrForbidden)
	})

	t.Run("catalog reference fills defaults", func(t *testing.T) {
		plans := new(MockPlanStore)
		catalog := new(MockCatalogReader)
		students := new(MockStudentStore)
		svc := newPlanService(plans, catalog, new(MockTemplateReader), students)

		catalogID := uint(3)
		catalog.On("FindByID", catalogID).Return(&model.CatalogEntry{
			ExamSystem:     "基础",
			Module:         "词汇",
			TaskName:       "单词听写",
			DefaultMinutes: 25,
		}, nil)
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		plans.On("CreateWithItems", mock.MatchedBy(func(p *model.StudyPlan) bool {
			return len(p.Items) == 1 &&
				p.Items[0].Module == "词汇" &&
				p.Items[0].PlannedMinutes == 25
		})).Return(nil)

		_, err := svc.CreatePlan(adminClaims(), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "2026-09-01",
			Items:     []PlanItemRequest{{CatalogID: &catalogID}},
		})
		assert.NoError(t, err)
		plans.AssertExpectations(t)
	})

	t.Run("template expands into items", func(t *testing.T) {
		plans := new(MockPlanStore)
		templates := new(MockTemplateReader)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), templates, students)

		templateID := uint(9)
		templates.On("FindByID", templateID).Return(&model.PlanTemplate{
			Items: []model.PlanTemplateItem{
				{ExamSystem: "雅思", Module: "口语", TaskName: "Part2 话题练习", DefaultMinutes: 20, EvidencePolicy: model.EvidenceAudio},
			},
		}, nil)
		plans.On("FindByStudentAndDate", uint(5), mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		plans.On("CreateWithItems", mock.MatchedBy(func(p *model.StudyPlan) bool {
			return len(p.Items) == 1 &&
				p.Items[0].TaskName == "Part2 话题练习" &&
				p.Items[0].PlannedMinutes == 20 &&
				p.Items[0].EvidencePolicy == model.EvidenceAudio
		})).Return(nil)

		_, err := svc.CreatePlan(adminClaims(), &CreatePlanRequest{
			StudentID:  5,
			PlanDate:   "2026-09-01",
			TemplateID: &templateID,
		})
		assert.NoError(t, err)
		plans.AssertExpectations(t)
	})

	t.Run("invalid date rejected", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		_, err := svc.CreatePlan(adminClaims(), &CreatePlanRequest{
			StudentID: 5,
			PlanDate:  "09/01/2026",
			Items:     itemReqs,
		})
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})
}

func TestPublishPlan(t *testing.T) {
	t.Run("publishes draft", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		plan := &model.StudyPlan{StudentID: 5, Status: model.PlanDraft}
		plan.ID = 42
		plans.On("FindByID", uint(42)).Return(plan, nil)
		plans.On("Publish", uint(42), uint(1), testNow).Return(nil)

		_, err := svc.PublishPlan(adminClaims(), 42)
		assert.NoError(t, err)
		plans.AssertExpectations(t)
	})

	t.Run("publish of non-draft fails", func(t *testing.T) {
		plans := new(MockPlanStore)
		students := new(MockStudentStore)
		svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

		plan := &model.StudyPlan{StudentID: 5, Status: model.PlanPublished}
		plan.ID = 42
		plans.On("FindByID", uint(42)).Return(plan, nil)
		plans.On("Publish", uint(42), uint(1), testNow).Return(util.ErrInvalidStatus)

		_, err := svc.PublishPlan(adminClaims(), 42)
		assert.ErrorIs(t, err, util.ErrInvalidStatus)
	})
}

func TestListPlansHidesDraftsFromStudents(t *testing.T) {
	plans := new(MockPlanStore)
	students := new(MockStudentStore)
	svc := newPlanService(plans, new(MockCatalogReader), new(MockTemplateReader), students)

	profile := &model.StudentProfile{}
	profile.ID = 5
	students.On("FindByUserID", uint(20)).Return(profile, nil)

	draft := &model.StudyPlan{StudentID: 5, Status: model.PlanDraft}
	published := &model.StudyPlan{StudentID: 5, Status: model.PlanPublished}
	plans.On("ListByStudentAndRange", uint(5), mock.Anything, mock.Anything).
		Return([]*model.StudyPlan{draft, published}, nil)

	from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.ListPlans(studentClaims(20), 5, from, to)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, model.PlanPublished, result[0].Status)
}
