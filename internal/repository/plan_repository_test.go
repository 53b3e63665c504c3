package repository

import (
	"testing"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB 内存库跑仓储层的约束与条件更新，每个测试各自一份
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库随连接销毁，限制为单连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.StudentProfile{},
		&model.StudyPlan{},
		&model.PlanItem{},
		&model.TimerSession{},
		&model.ReviewLog{},
	))
	return db
}

func seedPlanWithItem(t *testing.T, db *gorm.DB) *model.PlanItem {
	t.Helper()
	plan := &model.StudyPlan{
		StudentID: 5,
		PlanDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:    model.PlanPublished,
		CreatedBy: 10,
	}
	require.NoError(t, db.Create(plan).Error)

	item := &model.PlanItem{
		PlanID:         plan.ID,
		ExamSystem:     "雅思",
		Module:         "听力",
		TaskName:       "剑桥真题精听",
		PlannedMinutes: 30,
		StudentStatus:  model.StudentSubmitted,
		ReviewStatus:   model.ReviewPending,
		EvidencePolicy: model.EvidenceOptional,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestPlanUniquePerStudentAndDate(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	first := &model.StudyPlan{StudentID: 5, PlanDate: date, Status: model.PlanDraft, CreatedBy: 10}
	require.NoError(t, repo.CreateWithItems(first))

	dup := &model.StudyPlan{StudentID: 5, PlanDate: date, Status: model.PlanDraft, CreatedBy: 11}
	assert.ErrorIs(t, repo.CreateWithItems(dup), util.ErrDuplicatePlan)

	otherStudent := &model.StudyPlan{StudentID: 6, PlanDate: date, Status: model.PlanDraft, CreatedBy: 10}
	assert.NoError(t, repo.CreateWithItems(otherStudent))

	otherDate := &model.StudyPlan{StudentID: 5, PlanDate: date.AddDate(0, 0, 1), Status: model.PlanDraft, CreatedBy: 10}
	assert.NoError(t, repo.CreateWithItems(otherDate))

	// 删除后当天的位置重新可用
	require.NoError(t, repo.Delete(first.ID))
	again := &model.StudyPlan{StudentID: 5, PlanDate: date, Status: model.PlanDraft, CreatedBy: 10}
	assert.NoError(t, repo.CreateWithItems(again))
}

func TestApplyReviewSingleWinner(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	item := seedPlanWithItem(t, db)
	at := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, repo.ApplyReview(item.ID, 10, model.ReviewPending, model.ReviewApproved, "不错", model.OriginManual, at, false))

	err := repo.ApplyReview(item.ID, 11, model.ReviewPending, model.ReviewRejected, "重做", model.OriginManual, at, false)
	assert.ErrorIs(t, err, util.ErrAlreadyLocked)

	var got model.PlanItem
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, model.ReviewApproved, got.ReviewStatus)
	assert.True(t, got.Locked)

	var logs int64
	require.NoError(t, db.Model(&model.ReviewLog{}).Where("plan_item_id = ?", item.ID).Count(&logs).Error)
	assert.EqualValues(t, 1, logs)

	// 管理员改判追加第二条审计记录，旧记录不动
	require.NoError(t, repo.ApplyReview(item.ID, 1, model.ReviewApproved, model.ReviewRejected, "申诉通过", model.OriginAdmin, at.Add(time.Hour), true))
	require.NoError(t, db.Model(&model.ReviewLog{}).Where("plan_item_id = ?", item.ID).Count(&logs).Error)
	assert.EqualValues(t, 2, logs)
}

func TestResetItemHonorsQuota(t *testing.T) {
	db := openTestDB(t)
	repo := NewPlanRepository(db)
	item := seedPlanWithItem(t, db)
	submittedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(item).Updates(map[string]interface{}{
		"student_comment":     "完成了",
		"submitted_at":        submittedAt,
		"student_reset_count": util.MaxStudentResets - 1,
	}).Error)

	require.NoError(t, repo.ResetItem(item.ID, util.MaxStudentResets))

	var got model.PlanItem
	require.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, model.StudentPending, got.StudentStatus)
	assert.Empty(t, got.StudentComment)
	assert.Nil(t, got.SubmittedAt)
	assert.Equal(t, util.MaxStudentResets, got.StudentResetCount)

	assert.ErrorIs(t, repo.ResetItem(item.ID, util.MaxStudentResets), util.ErrResetLimitReached)
}
