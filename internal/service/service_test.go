package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/pkg/database"
	"chainedu_backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// 内存库不能让连接池开第二个连接，否则各连接各有一份空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newAchievementService(t *testing.T, db *gorm.DB) *AchievementService {
	t.Helper()
	return NewAchievementService(
		db,
		repository.NewAchievementRepository(db, nil),
		repository.NewProgressRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewModuleRepository(db),
		repository.NewForumRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db)),
	)
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username: email,
		Email:    email,
		Password: "hashed-password",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestModule(t *testing.T, db *gorm.DB, track model.Track, title string) *model.Module {
	t.Helper()
	module := &model.Module{
		Title:         title,
		Track:         track,
		OrderIndex:    1,
		DurationHours: 2,
		IsActive:      true,
	}
	require.NoError(t, db.Create(module).Error)
	return module
}

func completeModule(t *testing.T, db *gorm.DB, userID, moduleID uint) {
	t.Helper()
	now := time.Now().UTC()
	progress := &model.UserProgress{
		UserID:               userID,
		ModuleID:             moduleID,
		Status:               model.StatusCompleted,
		CompletionPercentage: 100,
		StartedAt:            &now,
		CompletedAt:          &now,
		LastAccessedAt:       &now,
	}
	require.NoError(t, db.Create(progress).Error)
}
