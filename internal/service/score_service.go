package service

import (
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/util"
)

// ScoreService 测评成绩录入与查询
type ScoreService struct {
	Repo   *repository.ScoreRepository
	Access *AccessService
}

func NewScoreService(repo *repository.ScoreRepository, access *AccessService) *ScoreService {
	return &ScoreService{Repo: repo, Access: access}
}

type CreateScoreRequest struct {
	StudentID       uint    `json:"studentId" binding:"required"`
	ExamSystem      string  `json:"examSystem" binding:"required"`
	AssessmentName  string  `json:"assessmentName" binding:"required"`
	TakenOn         string  `json:"takenOn" binding:"required"`
	TotalScore      float64 `json:"totalScore"`
	ComponentScores string  `json:"componentScores"`
	Notes           string  `json:"notes"`
}

func (s *ScoreService) Create(claims *util.Claims, req *CreateScoreRequest) (*model.ScoreRecord, error) {
	if err := s.Access.RequireCoach(claims, req.StudentID); err != nil {
		return nil, err
	}
	takenOn, err := time.Parse(util.DateFormat, req.TakenOn)
	if err != nil {
		return nil, util.ErrInvalidStatus
	}

	record := &model.ScoreRecord{
		StudentID:       req.StudentID,
		ExamSystem:      req.ExamSystem,
		AssessmentName:  req.AssessmentName,
		TakenOn:         takenOn,
		TotalScore:      req.TotalScore,
		ComponentScores: req.ComponentScores,
		Notes:           req.Notes,
		RecordedBy:      claims.UserID,
	}
	if err := s.Repo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ScoreService) ListByStudent(claims *util.Claims, studentID uint, limit int) ([]*model.ScoreRecord, error) {
	if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListByStudent(studentID, limit)
}
