package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/util"
	"studycoach_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "task_catalog:active"
	catalogCacheTTL = 10 * time.Minute
)

// CatalogService 任务字典维护。
// 活跃条目走 Redis 缓存，写操作后失效
type CatalogService struct {
	Repo  *repository.CatalogRepository
	Redis *redis.Client
}

func NewCatalogService(repo *repository.CatalogRepository, redisClient *redis.Client) *CatalogService {
	return &CatalogService{Repo: repo, Redis: redisClient}
}

// ListActive 学生/老师选任务时的下拉数据源
func (s *CatalogService) ListActive(ctx context.Context) ([]*model.CatalogEntry, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, catalogCacheKey).Result(); err == nil {
			var entries []*model.CatalogEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.Repo.ListActive()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, catalogCacheKey, data, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("catalog cache set failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (s *CatalogService) ListAll() ([]*model.CatalogEntry, error) {
	return s.Repo.ListAll()
}

func (s *CatalogService) Create(ctx context.Context, entry *model.CatalogEntry) error {
	if entry.ExamSystem == "" || entry.Module == "" || entry.TaskName == "" {
		return util.ErrInvalidStatus
	}
	if err := s.Repo.Create(entry); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, description string, defaultMinutes int, active bool) (*model.CatalogEntry, error) {
	entry, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	entry.Description = description
	entry.DefaultMinutes = defaultMinutes
	entry.IsActive = active
	if err := s.Repo.Update(entry); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return entry, nil
}

// Deactivate 下架不删除，历史计划里的字典副本不受影响
func (s *CatalogService) Deactivate(ctx context.Context, id uint) error {
	if err := s.Repo.Deactivate(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, catalogCacheKey).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
