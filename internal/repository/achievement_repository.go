package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/pkg/logger"
)

const (
	activeCatalogKey = "achievements:catalog:active"
	catalogCacheTTL  = 10 * time.Minute
)

type AchievementRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewAchievementRepository(db *gorm.DB, rdb *redis.Client) *AchievementRepository {
	return &AchievementRepository{DB: db, Redis: rdb}
}

// FindActive 启用的成就目录，按 ID 升序。优先走 Redis 缓存，缓存故障时直接回源。
func (r *AchievementRepository) FindActive(ctx context.Context) ([]model.Achievement, error) {
	if r.Redis != nil {
		cached, err := r.Redis.Get(ctx, activeCatalogKey).Bytes()
		if err == nil {
			var achievements []model.Achievement
			if jsonErr := json.Unmarshal(cached, &achievements); jsonErr == nil {
				return achievements, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("achievement catalog cache read failed", zap.Error(err))
		}
	}

	var achievements []model.Achievement
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, jsonErr := json.Marshal(achievements); jsonErr == nil {
			if err := r.Redis.Set(ctx, activeCatalogKey, data, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("achievement catalog cache write failed", zap.Error(err))
			}
		}
	}
	return achievements, nil
}

// InvalidateCatalog 目录变更后清理缓存
func (r *AchievementRepository) InvalidateCatalog(ctx context.Context) {
	if r.Redis == nil {
		return
	}
	if err := r.Redis.Del(ctx, activeCatalogKey).Err(); err != nil {
		logger.Log.Warn("achievement catalog cache invalidate failed", zap.Error(err))
	}
}

func (r *AchievementRepository) Create(achievement *model.Achievement) error {
	return r.DB.Create(achievement).Error
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AchievementRepository) Update(achievement *model.Achievement) error {
	return r.DB.Save(achievement).Error
}

// EarnedIDs 用户已获得的成就 ID 集合
func (r *AchievementRepository) EarnedIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListEarned 用户已获得的成就及获得时间
func (r *AchievementRepository) ListEarned(userID uint) ([]model.UserAchievement, error) {
	var earned []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).
		Order("earned_at desc").
		Find(&earned).Error
	if err != nil {
		return nil, err
	}
	return earned, nil
}

func (r *AchievementRepository) FindMany(ids []uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if len(ids) == 0 {
		return achievements, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}
