package service

import (
	"context"
	"encoding/json"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	catalogPathKeyPrefix = "catalog:path:"
	catalogLoadTimeout   = 3 * time.Second
)

// CatalogService 学习路径目录的只读访问，Redis 可选作为读穿缓存
type CatalogService struct {
	Repo  *repository.LearningPathRepository
	Redis *redis.Client
	TTL   time.Duration
	group singleflight.Group
}

func NewCatalogService(repo *repository.LearningPathRepository, rdb *redis.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{Repo: repo, Redis: rdb, TTL: ttl}
}

// GetPath 不存在时返回 util.ErrPathNotFound。缓存故障只记录日志，回退到数据库
func (s *CatalogService) GetPath(ctx context.Context, pathID string) (*model.LearningPath, error) {
	if p, ok := s.fromCache(ctx, pathID); ok {
		monitoring.CatalogCacheLookups.WithLabelValues("hit").Inc()
		return p, nil
	}
	monitoring.CatalogCacheLookups.WithLabelValues("miss").Inc()

	// 合并后的加载不受第一个调用方取消的影响
	v, err, _ := s.group.Do(pathID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()

		p, err := s.Repo.FindByID(loadCtx, pathID)
		if err != nil {
			return nil, err
		}
		s.toCache(loadCtx, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*model.LearningPath)
	return &p, nil
}

// GetPathDuration 学习路径总周数
func (s *CatalogService) GetPathDuration(ctx context.Context, pathID string) (int, error) {
	p, err := s.GetPath(ctx, pathID)
	if err != nil {
		return 0, err
	}
	return p.Duration(), nil
}

// Invalidate 目录内容变更后由管理端调用
func (s *CatalogService) Invalidate(ctx context.Context, pathID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, catalogPathKeyPrefix+pathID).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.String("pathId", pathID), zap.Error(err))
	}
}

func (s *CatalogService) fromCache(ctx context.Context, pathID string) (*model.LearningPath, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, catalogPathKeyPrefix+pathID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("catalog cache read failed", zap.String("pathId", pathID), zap.Error(err))
		}
		return nil, false
	}
	var p model.LearningPath
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Log.Warn("catalog cache entry corrupt", zap.String("pathId", pathID), zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (s *CatalogService) toCache(ctx context.Context, p *model.LearningPath) {
	if s.Redis == nil || s.TTL <= 0 {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, catalogPathKeyPrefix+p.ID, raw, s.TTL).Err(); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.String("pathId", p.ID), zap.Error(err))
	}
}
