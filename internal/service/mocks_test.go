package service

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/pkg/logger"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type MockStudentStore struct {
	mock.Mock
}

func (m *MockStudentStore) FindByID(id uint) (*model.StudentProfile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentStore) FindByUserID(userID uint) (*model.StudentProfile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentStore) FindByGuardianToken(token string) (*model.StudentProfile, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentStore) HasTeacherLink(teacherID, studentID uint) (bool, error) {
	args := m.Called(teacherID, studentID)
	return args.Bool(0), args.Error(1)
}

type MockPlanStore struct {
	mock.Mock
}

func (m *MockPlanStore) CreateWithItems(plan *model.StudyPlan) error {
	return m.Called(plan).Error(0)
}

func (m *MockPlanStore) FindByID(id uint) (*model.StudyPlan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudyPlan), args.Error(1)
}

func (m *MockPlanStore) FindByIDFull(id uint) (*model.StudyPlan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudyPlan), args.Error(1)
}

func (m *MockPlanStore) FindByStudentAndDate(studentID uint, date time.Time) (*model.StudyPlan, error) {
	args := m.Called(studentID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudyPlan), args.Error(1)
}

func (m *MockPlanStore) ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.StudyPlan, error) {
	args := m.Called(studentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StudyPlan), args.Error(1)
}

func (m *MockPlanStore) ReplaceItems(plan *model.StudyPlan, items []model.PlanItem) error {
	return m.Called(plan, items).Error(0)
}

func (m *MockPlanStore) Publish(planID, publisherID uint, at time.Time) error {
	return m.Called(planID, publisherID, at).Error(0)
}

func (m *MockPlanStore) UpdateStatus(planID uint, status model.PlanStatus) error {
	return m.Called(planID, status).Error(0)
}

func (m *MockPlanStore) Delete(planID uint) error {
	return m.Called(planID).Error(0)
}

func (m *MockPlanStore) LockStalePlans(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) FindByID(id uint) (*model.CatalogEntry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogEntry), args.Error(1)
}

type MockTemplateReader struct {
	mock.Mock
}

func (m *MockTemplateReader) FindByID(id uint) (*model.PlanTemplate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlanTemplate), args.Error(1)
}

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) FindItemWithPlan(itemID uint) (*model.PlanItem, *model.StudyPlan, error) {
	args := m.Called(itemID)
	var item *model.PlanItem
	var plan *model.StudyPlan
	if args.Get(0) != nil {
		item = args.Get(0).(*model.PlanItem)
	}
	if args.Get(1) != nil {
		plan = args.Get(1).(*model.StudyPlan)
	}
	return item, plan, args.Error(2)
}

func (m *MockItemStore) UpdateItemStudentStatus(itemID uint, status model.StudentStatus) error {
	return m.Called(itemID, status).Error(0)
}

func (m *MockItemStore) SubmitItem(itemID uint, comment string, manualMinutes int, at time.Time) error {
	return m.Called(itemID, comment, manualMinutes, at).Error(0)
}

func (m *MockItemStore) ResetItem(itemID uint, maxResets int) error {
	return m.Called(itemID, maxResets).Error(0)
}

func (m *MockItemStore) ResetItemTime(itemID uint, at time.Time) error {
	return m.Called(itemID, at).Error(0)
}

func (m *MockItemStore) ApplyReview(itemID, reviewerID uint, from, to model.ReviewStatus, comment string, origin model.ReviewOrigin, at time.Time, override bool) error {
	return m.Called(itemID, reviewerID, from, to, comment, origin, at, override).Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(session *model.TimerSession) error {
	return m.Called(session).Error(0)
}

func (m *MockSessionStore) FindForItem(sessionID, itemID uint) (*model.TimerSession, error) {
	args := m.Called(sessionID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimerSession), args.Error(1)
}

func (m *MockSessionStore) ListByItem(itemID uint) ([]*model.TimerSession, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TimerSession), args.Error(1)
}

func (m *MockSessionStore) Close(sessionID, itemID uint, endedAt time.Time, seconds int) error {
	return m.Called(sessionID, itemID, endedAt, seconds).Error(0)
}

func (m *MockSessionStore) Void(sessionID, itemID uint) error {
	return m.Called(sessionID, itemID).Error(0)
}

type MockEvidenceStore struct {
	mock.Mock
}

func (m *MockEvidenceStore) Create(evidence *model.Evidence) error {
	return m.Called(evidence).Error(0)
}

func (m *MockEvidenceStore) FindByID(id uint) (*model.Evidence, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceStore) ListByItem(itemID uint) ([]*model.Evidence, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Evidence), args.Error(1)
}

func (m *MockEvidenceStore) CountLiveByItem(itemID uint, kind model.EvidenceKind) (int64, error) {
	args := m.Called(itemID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEvidenceStore) Delete(id uint) error {
	return m.Called(id).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	args := m.Called(ctx, objectName, localPath, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *MockStorage) GetURL(objectName string) string {
	return m.Called(objectName).String(0)
}

type MockReviewLogStore struct {
	mock.Mock
}

func (m *MockReviewLogStore) ListByItem(itemID uint) ([]*model.ReviewLog, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReviewLog), args.Error(1)
}

type MockScoreStore struct {
	mock.Mock
}

func (m *MockScoreStore) ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.ScoreRecord, error) {
	args := m.Called(studentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScoreRecord), args.Error(1)
}
