package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chainedu_backend/internal/config"
	"chainedu_backend/internal/model"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedAchievements(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Module{},
		&model.Lesson{},
		&model.Assessment{},
		&model.UserProgress{},
		&model.QuizAttempt{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Cohort{},
		&model.CohortMember{},
		&model.CohortDeadline{},
		&model.Announcement{},
		&model.ForumPost{},
		&model.ForumVote{},
		&model.Notification{},
		&model.AssistantSession{},
		&model.AssistantMessage{},
	)
}

// seedAchievements 首次启动时写入默认成就目录
func seedAchievements(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []model.Achievement{
		{
			Name:        "First Steps",
			Description: "完成第一个课程模块",
			Icon:        "🎯",
			Category:    model.CategoryCompletion,
			Criteria:    []byte(`{"module_completion": {"any_module": true}}`),
			Points:      10,
			IsActive:    true,
		},
		{
			Name:        "Perfectionist",
			Description: "任意测验拿到满分",
			Icon:        "💯",
			Category:    model.CategoryScore,
			Criteria:    []byte(`{"perfect_score": {"any_assessment": true}}`),
			Points:      20,
			IsActive:    true,
		},
		{
			Name:        "High Achiever",
			Description: "测验得分达到 90%",
			Icon:        "⭐",
			Category:    model.CategoryScore,
			Criteria:    []byte(`{"score_threshold": {"min_score": 90}}`),
			Points:      15,
			IsActive:    true,
		},
		{
			Name:        "Community Helper",
			Description: "在讨论区发布 10 个有帮助的帖子",
			Icon:        "🤝",
			Category:    model.CategoryHelper,
			Criteria:    []byte(`{"forum_help": {"posts": 10}}`),
			Points:      25,
			IsActive:    true,
		},
		{
			Name:        "Week Warrior",
			Description: "连续学习 7 天",
			Icon:        "🔥",
			Category:    model.CategoryEngagement,
			Criteria:    []byte(`{"streak": {"days": 7}}`),
			Points:      30,
			IsActive:    true,
		},
		{
			Name:        "Developer Track Graduate",
			Description: "完成开发者方向全部模块",
			Icon:        "🎓",
			Category:    model.CategoryCompletion,
			Criteria:    []byte(`{"track_completion": {"track_name": "developer"}}`),
			Points:      50,
			IsActive:    true,
		},
		{
			Name:        "Blockchain Master",
			Description: "完成全部四个学习方向",
			Icon:        "🏆",
			Category:    model.CategoryCompletion,
			Criteria:    []byte(`{"track_completion": {"all_tracks": true}}`),
			Points:      100,
			IsActive:    true,
		},
	}

	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
