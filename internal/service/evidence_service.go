package service

import (
	"context"
	"errors"
	"mime"
	"strings"
	"time"

	"studycoach_backend/internal/config"
	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"
	"studycoach_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EvidenceStore interface {
	Create(evidence *model.Evidence) error
	FindByID(id uint) (*model.Evidence, error)
	ListByItem(itemID uint) ([]*model.Evidence, error)
	CountLiveByItem(itemID uint, kind model.EvidenceKind) (int64, error)
	Delete(id uint) error
}

type EvidenceUploader interface {
	UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(objectName string) string
}

// EvidenceService 完成凭证的提交与管理。
// 证据只追加；评审落锤后该项的证据冻结
type EvidenceService struct {
	Access   *AccessService
	Items    PlanItemStore
	Evidence EvidenceStore
	Storage  EvidenceUploader
	Cfg      *config.Config
	Now      func() time.Time
}

func NewEvidenceService(access *AccessService, items PlanItemStore, evidence EvidenceStore, storage EvidenceUploader, cfg *config.Config) *EvidenceService {
	return &EvidenceService{
		Access:   access,
		Items:    items,
		Evidence: evidence,
		Storage:  storage,
		Cfg:      cfg,
		Now:      time.Now,
	}
}

// loadAttachableItem 证据写操作的共同校验
func (s *EvidenceService) loadAttachableItem(claims *util.Claims, itemID uint) (*model.PlanItem, *model.StudyPlan, error) {
	item, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, nil, err
	}
	if plan.Status != model.PlanPublished {
		return nil, nil, util.ErrInvalidStatus
	}
	if item.Superseded {
		return nil, nil, util.ErrNotFound
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return nil, nil, util.ErrAlreadyLocked
	}
	return item, plan, nil
}

// evidencePolicyAllows 政策对证据类型的约束：text 只收文字，
// image/audio 只收对应类型；optional/required 不限类型
func evidencePolicyAllows(policy model.EvidencePolicy, kind model.EvidenceKind) bool {
	switch policy {
	case model.EvidenceText:
		return kind == model.EvidenceKindText
	case model.EvidenceImage:
		return kind == model.EvidenceKindImage
	case model.EvidenceAudio:
		return kind == model.EvidenceKindAudio
	}
	return true
}

// AddText 文字证据
func (s *EvidenceService) AddText(claims *util.Claims, itemID uint, text, note string) (*model.Evidence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrInvalidEvidence
	}
	item, _, err := s.loadAttachableItem(claims, itemID)
	if err != nil {
		return nil, err
	}
	if !evidencePolicyAllows(item.EvidencePolicy, model.EvidenceKindText) {
		return nil, util.ErrPolicyViolation
	}

	evidence := &model.Evidence{
		PlanItemID:  itemID,
		UploaderID:  claims.UserID,
		Kind:        model.EvidenceKindText,
		TextContent: text,
		Note:        note,
	}
	if err := s.Evidence.Create(evidence); err != nil {
		return nil, err
	}
	return evidence, nil
}

// AddFile 文件证据（图片/音频/文档）。
// controller 先把上传写到临时文件再进来，音频会用 ffmpeg 探测时长
func (s *EvidenceService) AddFile(ctx context.Context, claims *util.Claims, itemID uint, originalFilename, localPath string, size int64, note string) (*model.Evidence, error) {
	ext := util.FileExtension(originalFilename)
	if !util.AllowedEvidenceExtensions[ext] {
		return nil, util.ErrInvalidEvidence
	}
	if size <= 0 || size > s.Cfg.Storage.MaxUploadBytes {
		return nil, util.ErrInvalidEvidence
	}

	item, plan, err := s.loadAttachableItem(claims, itemID)
	if err != nil {
		return nil, err
	}

	kind := model.EvidenceKind(util.EvidenceKind(ext))
	if !evidencePolicyAllows(item.EvidencePolicy, kind) {
		return nil, util.ErrPolicyViolation
	}
	safeName := util.SanitizeFilename(originalFilename)

	var audioSeconds float64
	if kind == model.EvidenceKindAudio {
		if info, err := util.ProbeAudio(localPath); err != nil {
			logger.Log.Warn("audio probe failed", zap.String("file", safeName), zap.Error(err))
		} else {
			audioSeconds = info.Duration
		}
	}

	objectName := EvidenceObjectName(plan.StudentID, itemID, safeName)
	contentType := mime.TypeByExtension("." + ext)
	if _, err := s.Storage.UploadFile(ctx, objectName, localPath, contentType); err != nil {
		logger.Log.Error("evidence upload failed", zap.String("object", objectName), zap.Error(err))
		return nil, util.ErrUnavailable
	}

	evidence := &model.Evidence{
		PlanItemID:       itemID,
		UploaderID:       claims.UserID,
		Kind:             kind,
		StoragePath:      objectName,
		OriginalFilename: safeName,
		FileSize:         size,
		Note:             note,
		AudioSeconds:     audioSeconds,
	}
	if err := s.Evidence.Create(evidence); err != nil {
		return nil, err
	}
	return evidence, nil
}

// List 某项的全部未删除证据，附带下载地址
func (s *EvidenceService) List(claims *util.Claims, itemID uint) ([]*model.Evidence, map[uint]string, error) {
	_, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, nil, err
	}

	evidences, err := s.Evidence.ListByItem(itemID)
	if err != nil {
		return nil, nil, err
	}
	urls := make(map[uint]string, len(evidences))
	for _, e := range evidences {
		if e.StoragePath != "" {
			urls[e.ID] = s.Storage.GetURL(e.StoragePath)
		}
	}
	return evidences, urls, nil
}

// Delete 上传者本人或教练可删，评审落锤后不可删。
// 存储里的文件保留，便于事后追查
func (s *EvidenceService) Delete(claims *util.Claims, evidenceID uint) error {
	evidence, err := s.Evidence.FindByID(evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}

	item, plan, err := s.Items.FindItemWithPlan(evidence.PlanItemID)
	if err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyLocked
	}

	if evidence.UploaderID != claims.UserID {
		if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
			return err
		}
	} else if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return err
	}

	return s.Evidence.Delete(evidenceID)
}
