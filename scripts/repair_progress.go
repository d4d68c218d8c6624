// 手动修复派生数据脚本
//
// 主应用会在作答副作用失败时自动重试；此脚本用于批量导入数据或长时间故障之后的全量修复。
//
// 用法:
//
//	go run scripts/repair_progress.go -user 42
//	go run scripts/repair_progress.go -lesson 7
//	go run scripts/repair_progress.go -counts

package main

import (
	"context"
	"flag"
	"log"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/service"
	"logicfy_backend/pkg/database"
	"logicfy_backend/pkg/logger"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	userID := flag.Uint("user", 0, "重算该用户的全部进度与经验缓存")
	lessonID := flag.Uint("lesson", 0, "重算该课程的统计与所有相关用户进度")
	counts := flag.Bool("counts", false, "刷新全部内容计数缓存")
	flag.Parse()

	if *userID == 0 && *lessonID == 0 && !*counts {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	settings := service.NewSettingsStore(service.SettingsFromConfig(&cfg))
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	content := service.NewContentService(contentRepo)
	users := service.NewUserService(userRepo, answerRepo, settings)
	xp := service.NewXpService(db, repository.NewXpRepository(db), userRepo, repository.NewLeaderboardCache(nil), settings)
	analytics := service.NewAnalyticsService(db, repository.NewAnalyticsRepository(db), answerRepo, contentRepo, settings)
	progress := service.NewProgressService(db, contentRepo, answerRepo, progressRepo, userRepo, service.NewLocalLocker())
	repair := service.NewRepairService(content, progress, xp, analytics, users, answerRepo, repository.NewEnrollmentRepository(db), progressRepo)

	ctx := context.Background()

	if *counts {
		res, err := content.RefreshAllCounts(ctx)
		if err != nil {
			log.Fatalf("刷新计数失败: %v", err)
		}
		log.Printf("计数已刷新: 课程 %d, 小节 %d, 单元 %d", res.Lessons, res.Sections, res.Units)
	}

	if *lessonID != 0 {
		report, err := repair.RepairLesson(ctx, *lessonID)
		if err != nil {
			log.Fatalf("修复课程 %d 失败: %v", *lessonID, err)
		}
		log.Printf("课程 %d 已修复: 题目 %d, 用户 %d", report.LessonID, report.Questions, report.Users)
	}

	if *userID != 0 {
		report, err := repair.RepairUser(ctx, *userID)
		if err != nil {
			log.Fatalf("修复用户 %d 失败: %v", *userID, err)
		}
		log.Printf("用户 %d 已修复: 课程 %d, 经验 %d, 连续 %d 天", report.UserID, report.Lessons, report.TotalXp, report.Streak)
	}

	log.Println("完成！")
}
