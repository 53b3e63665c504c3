package service

import (
	"errors"
	"sort"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

type ReportPlanStore interface {
	ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.StudyPlan, error)
}

type ScoreStore interface {
	ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.ScoreRecord, error)
}

type ReportStudentStore interface {
	FindByID(id uint) (*model.StudentProfile, error)
	FindByGuardianToken(token string) (*model.StudentProfile, error)
}

// ReportService 把一段日期内的计划、计时、评审聚合成进度视图，
// 老师端看板和家长端只读报告共用同一套聚合
type ReportService struct {
	Access   *AccessService
	Plans    ReportPlanStore
	Scores   ScoreStore
	Students ReportStudentStore
	Now      func() time.Time
}

func NewReportService(access *AccessService, plans ReportPlanStore, scores ScoreStore, students ReportStudentStore) *ReportService {
	return &ReportService{
		Access:   access,
		Plans:    plans,
		Scores:   scores,
		Students: students,
		Now:      time.Now,
	}
}

type DailyProgress struct {
	Date           string `json:"date"`
	Items          int    `json:"items"`
	SubmittedItems int    `json:"submittedItems"`
	ApprovedItems  int    `json:"approvedItems"`
	PlannedMinutes int    `json:"plannedMinutes"`
	ActualMinutes  int    `json:"actualMinutes"`
}

type ModuleProgress struct {
	Module         string `json:"module"`
	Items          int    `json:"items"`
	ApprovedItems  int    `json:"approvedItems"`
	PlannedMinutes int    `json:"plannedMinutes"`
	ActualMinutes  int    `json:"actualMinutes"`
}

type ProgressReport struct {
	StudentID  uint   `json:"studentId"`
	FullName   string `json:"fullName"`
	ExamTarget string `json:"examTarget,omitempty"`
	From       string `json:"from"`
	To         string `json:"to"`

	TotalItems     int `json:"totalItems"`
	SubmittedItems int `json:"submittedItems"`
	ApprovedItems  int `json:"approvedItems"`
	PartialItems   int `json:"partialItems"`
	RejectedItems  int `json:"rejectedItems"`
	PendingReviews int `json:"pendingReviews"`

	PlannedMinutes int `json:"plannedMinutes"`
	ActualMinutes  int `json:"actualMinutes"`

	// 已通过项数 / 总项数
	CompletionRate float64 `json:"completionRate"`

	Days    []DailyProgress      `json:"days"`
	Modules []ModuleProgress     `json:"modules"`
	Scores  []*model.ScoreRecord `json:"scores,omitempty"`
}

// Build 不做访问检查的纯聚合，两个入口共用
func (s *ReportService) Build(student *model.StudentProfile, from, to time.Time) (*ProgressReport, error) {
	plans, err := s.Plans.ListByStudentAndRange(student.ID, from, to)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{
		StudentID:  student.ID,
		FullName:   student.FullName,
		ExamTarget: student.ExamTarget,
		From:       from.Format(util.DateFormat),
		To:         to.Format(util.DateFormat),
	}

	dayIndex := make(map[string]*DailyProgress)
	moduleIndex := make(map[string]*ModuleProgress)

	for _, plan := range plans {
		if plan.Status == model.PlanDraft {
			continue
		}
		date := plan.PlanDate.Format(util.DateFormat)
		day, ok := dayIndex[date]
		if !ok {
			day = &DailyProgress{Date: date}
			dayIndex[date] = day
		}

		for i := range plan.Items {
			item := &plan.Items[i]
			actualMinutes := item.ActualSeconds / 60

			report.TotalItems++
			report.PlannedMinutes += item.PlannedMinutes
			report.ActualMinutes += actualMinutes

			day.Items++
			day.PlannedMinutes += item.PlannedMinutes
			day.ActualMinutes += actualMinutes

			mod, ok := moduleIndex[item.Module]
			if !ok {
				mod = &ModuleProgress{Module: item.Module}
				moduleIndex[item.Module] = mod
			}
			mod.Items++
			mod.PlannedMinutes += item.PlannedMinutes
			mod.ActualMinutes += actualMinutes

			if item.StudentStatus == model.StudentSubmitted {
				report.SubmittedItems++
				day.SubmittedItems++
				if item.ReviewStatus == model.ReviewPending {
					report.PendingReviews++
				}
			}
			switch item.ReviewStatus {
			case model.ReviewApproved:
				report.ApprovedItems++
				day.ApprovedItems++
				mod.ApprovedItems++
			case model.ReviewPartial:
				report.PartialItems++
			case model.ReviewRejected:
				report.RejectedItems++
			}
		}
	}

	if report.TotalItems > 0 {
		report.CompletionRate = float64(report.ApprovedItems) / float64(report.TotalItems)
	}

	for _, day := range dayIndex {
		report.Days = append(report.Days, *day)
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date < report.Days[j].Date
	})

	for _, mod := range moduleIndex {
		report.Modules = append(report.Modules, *mod)
	}
	sort.Slice(report.Modules, func(i, j int) bool {
		return report.Modules[i].Module < report.Modules[j].Module
	})

	scores, err := s.Scores.ListByStudentAndRange(student.ID, from, to)
	if err != nil {
		return nil, err
	}
	report.Scores = scores

	return report, nil
}

// GetReport 登录用户的进度报告
func (s *ReportService) GetReport(claims *util.Claims, studentID uint, from, to time.Time) (*ProgressReport, error) {
	if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
		return nil, err
	}
	student, err := s.Students.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return s.Build(student, from, to)
}

// GetGuardianReport 家长通过访问令牌查看，免登录只读。
// 不带日期时默认最近七天
func (s *ReportService) GetGuardianReport(token string, from, to time.Time) (*ProgressReport, error) {
	if token == "" {
		return nil, util.ErrNotFound
	}
	student, err := s.Students.FindByGuardianToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	if from.IsZero() || to.IsZero() {
		to = s.Now()
		from = to.AddDate(0, 0, -6)
	}
	report, err := s.Build(student, from, to)
	if err != nil {
		return nil, err
	}
	// 家长视图不下发成绩细节
	report.Scores = nil
	return report, nil
}
