package service

import (
	"errors"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"
	"studycoach_backend/pkg/logger"
	"studycoach_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PlanItemStore interface {
	FindItemWithPlan(itemID uint) (*model.PlanItem, *model.StudyPlan, error)
	UpdateItemStudentStatus(itemID uint, status model.StudentStatus) error
	SubmitItem(itemID uint, comment string, manualMinutes int, at time.Time) error
	ResetItem(itemID uint, maxResets int) error
	ResetItemTime(itemID uint, at time.Time) error
}

type SessionStore interface {
	Create(session *model.TimerSession) error
	FindForItem(sessionID, itemID uint) (*model.TimerSession, error)
	ListByItem(itemID uint) ([]*model.TimerSession, error)
	Close(sessionID, itemID uint, endedAt time.Time, seconds int) error
	Void(sessionID, itemID uint) error
}

type EvidenceCounter interface {
	CountLiveByItem(itemID uint, kind model.EvidenceKind) (int64, error)
}

// PlanItemService 学生侧的计划项操作：计时、提交、自助重置
type PlanItemService struct {
	Access   *AccessService
	Items    PlanItemStore
	Sessions SessionStore
	Evidence EvidenceCounter
	Now      func() time.Time
}

func NewPlanItemService(access *AccessService, items PlanItemStore, sessions SessionStore, evidence EvidenceCounter) *PlanItemService {
	return &PlanItemService{
		Access:   access,
		Items:    items,
		Sessions: sessions,
		Evidence: evidence,
		Now:      time.Now,
	}
}

// loadWritableItem 取出计划项并做学生侧写操作的共同校验：
// 访问授权、计划已发布、项未被替换。
// allowLockedPlan 只给关闭计时用，锁定后残留的计时段仍要能结算
func (s *PlanItemService) loadWritableItem(claims *util.Claims, itemID uint, allowLockedPlan bool) (*model.PlanItem, error) {
	item, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, err
	}
	switch plan.Status {
	case model.PlanPublished:
	case model.PlanLocked:
		if !allowLockedPlan {
			return nil, util.ErrInvalidStatus
		}
	default:
		return nil, util.ErrInvalidStatus
	}
	if item.Superseded {
		return nil, util.ErrNotFound
	}
	return item, nil
}

// StartTimer 开始一段计时。首次计时把项从 pending 推进到 in_progress。
// 允许同一项并存多段打开的计时（多设备场景），时长只在关闭时结算
func (s *PlanItemService) StartTimer(claims *util.Claims, itemID uint, deviceInfo string) (*model.TimerSession, error) {
	if claims == nil || claims.Role != model.Student {
		return nil, util.ErrForbidden
	}
	item, err := s.loadWritableItem(claims, itemID, false)
	if err != nil {
		return nil, err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return nil, util.ErrAlreadyLocked
	}

	session := &model.TimerSession{
		PlanItemID: itemID,
		StartedAt:  s.Now(),
		CreatedBy:  claims.UserID,
		Source:     "timer",
		DeviceInfo: deviceInfo,
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, err
	}

	if item.StudentStatus == model.StudentPending {
		if err := s.Items.UpdateItemStudentStatus(itemID, model.StudentInProgress); err != nil {
			return nil, err
		}
	}
	return session, nil
}

type StopTimerResult struct {
	SessionID      uint `json:"sessionId"`
	SessionSeconds int  `json:"sessionSeconds"`
	TotalSeconds   int  `json:"totalSeconds"`
}

// StopTimer 关闭计时段并结算时长。
// 关闭是一次性的：重复关闭返回 already_stopped，累计秒数不会再变。
// 客户端可带 durationHint 秒数，仅在合理区间内（不晚于服务器当前时间）
// 用于推算结束时刻，时长始终按结束减开始计算。
// 计划被整体锁定后仍可关闭，不然跨锁定时刻的计时段无法收尾
func (s *PlanItemService) StopTimer(claims *util.Claims, itemID, sessionID uint, durationHint int) (*StopTimerResult, error) {
	if claims == nil || claims.Role != model.Student {
		return nil, util.ErrForbidden
	}
	item, err := s.loadWritableItem(claims, itemID, true)
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.FindForItem(sessionID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if !session.Open() {
		return nil, util.ErrAlreadyStopped
	}

	now := s.Now()
	endedAt := now
	if durationHint > 0 {
		if hinted := session.StartedAt.Add(time.Duration(durationHint) * time.Second); hinted.Before(now) {
			endedAt = hinted
		}
	}
	seconds := int(endedAt.Sub(session.StartedAt).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	if err := s.Sessions.Close(sessionID, itemID, endedAt, seconds); err != nil {
		return nil, err
	}
	monitoring.TimerSessionCounter.Inc()

	return &StopTimerResult{
		SessionID:      sessionID,
		SessionSeconds: seconds,
		TotalSeconds:   item.ActualSeconds + seconds,
	}, nil
}

type SubmitRequest struct {
	Comment       string `json:"comment"`
	ManualMinutes int    `json:"manualMinutes"`
}

// Submit 学生提交完成。只有计划归属的学生本人可以提交。
// 证据政策在此把关；手动补报分钟只能抬高累计时长，不能压低
func (s *PlanItemService) Submit(claims *util.Claims, itemID uint, req *SubmitRequest) error {
	if claims == nil || claims.Role != model.Student {
		return util.ErrForbidden
	}
	item, err := s.loadWritableItem(claims, itemID, false)
	if err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyLocked
	}
	if req.ManualMinutes < 0 {
		return util.ErrInvalidStatus
	}

	if kind, required := requiredEvidenceKind(item.EvidencePolicy); required {
		count, err := s.Evidence.CountLiveByItem(itemID, kind)
		if err != nil {
			return err
		}
		if count == 0 {
			return util.ErrPolicyViolation
		}
	}

	return s.Items.SubmitItem(itemID, req.Comment, req.ManualMinutes, s.Now())
}

// requiredEvidenceKind 政策到证据类型的映射；optional 不做检查，
// required 接受任意一条未删除证据
func requiredEvidenceKind(policy model.EvidencePolicy) (model.EvidenceKind, bool) {
	switch policy {
	case model.EvidenceText:
		return model.EvidenceKindText, true
	case model.EvidenceImage:
		return model.EvidenceKindImage, true
	case model.EvidenceAudio:
		return model.EvidenceKindAudio, true
	case model.EvidenceRequired:
		return "", true
	}
	return "", false
}

// SelfReset 学生自助重置：撤回提交，回到 pending 重做。
// 每项最多 MaxStudentResets 次；一旦评审落锤就不能再重置
func (s *PlanItemService) SelfReset(claims *util.Claims, itemID uint) error {
	if claims == nil || claims.Role != model.Student {
		return util.ErrForbidden
	}
	item, err := s.loadWritableItem(claims, itemID, false)
	if err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyReviewed
	}
	if item.StudentResetCount >= util.MaxStudentResets {
		return util.ErrResetLimitReached
	}

	if err := s.Items.ResetItem(itemID, util.MaxStudentResets); err != nil {
		return err
	}
	logger.Log.Info("plan item self reset",
		zap.Uint("itemId", itemID),
		zap.Uint("studentUserId", claims.UserID),
		zap.Int("resetCount", item.StudentResetCount+1))
	return nil
}

// ResetTime 评审侧工具：清空某项全部计时（误计时补救）
func (s *PlanItemService) ResetTime(claims *util.Claims, itemID uint) error {
	item, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyLocked
	}
	return s.Items.ResetItemTime(itemID, s.Now())
}

// VoidSession 评审侧工具：作废一段已关闭的计时并扣回时长
func (s *PlanItemService) VoidSession(claims *util.Claims, itemID, sessionID uint) error {
	_, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if err := s.Sessions.Void(sessionID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSessionNotFound
		}
		return err
	}
	return nil
}

func (s *PlanItemService) ListSessions(claims *util.Claims, itemID uint) ([]*model.TimerSession, error) {
	_, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, err
	}
	return s.Sessions.ListByItem(itemID)
}
