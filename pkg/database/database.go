package database

import (
	"fmt"
	"log"
	"studycoach_backend/internal/config"
	"studycoach_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

	err = db.AutoMigrate(
		&model.User{},
		&model.StudentProfile{},
		&model.TeacherStudentLink{},
		&model.CatalogEntry{},
		&model.PlanTemplate{},
		&model.PlanTemplateItem{},
		&model.StudyPlan{},
		&model.PlanItem{},
		&model.TimerSession{},
		&model.Evidence{},
		&model.ReviewLog{},
		&model.ScoreRecord{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认任务字典（空库时插入常用条目，方便第一次排计划）
	var count int64
	db.Model(&model.CatalogEntry{}).Count(&count)
	if count == 0 {
		defaultEntries := []model.CatalogEntry{
			{ExamSystem: "雅思", Module: "听力", TaskName: "剑桥真题精听", DefaultMinutes: 30, IsActive: true},
			{ExamSystem: "雅思", Module: "阅读", TaskName: "真题限时阅读", DefaultMinutes: 40, IsActive: true},
			{ExamSystem: "雅思", Module: "口语", TaskName: "Part2 话题练习", DefaultMinutes: 20, IsActive: true},
			{ExamSystem: "雅思", Module: "写作", TaskName: "大作文一篇", DefaultMinutes: 45, IsActive: true},
			{ExamSystem: "基础", Module: "词汇", TaskName: "单词听写", DefaultMinutes: 25, IsActive: true},
			{ExamSystem: "基础", Module: "语法", TaskName: "语法练习册", DefaultMinutes: 30, IsActive: true},
		}
		for _, e := range defaultEntries {
			db.Create(&e)
		}
	}

	return db, nil
}
