// 批量导入任务字典脚本
//
// 从 CSV 文件导入字典条目（列：考试体系,模块,任务名,默认分钟,说明），
// 已存在的条目（考试体系+模块+任务名相同）跳过。
//
// 用法: go run scripts/seed_catalog.go -file catalog.csv
package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"

	"studycoach_backend/internal/config"
	"studycoach_backend/internal/model"
	"studycoach_backend/pkg/database"
	"studycoach_backend/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	file := flag.String("file", "catalog.csv", "字典条目CSV文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("无法打开CSV文件: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("CSV解析失败: %v", err)
	}

	var created, skipped int
	for i, record := range records {
		if len(record) < 3 {
			log.Printf("第%d行列数不足，跳过", i+1)
			continue
		}

		entry := model.CatalogEntry{
			ExamSystem: record[0],
			Module:     record[1],
			TaskName:   record[2],
			IsActive:   true,
		}
		if len(record) > 3 {
			entry.DefaultMinutes, _ = strconv.Atoi(record[3])
		}
		if len(record) > 4 {
			entry.Description = record[4]
		}

		var existing model.CatalogEntry
		err := db.Where("exam_system = ? AND module = ? AND task_name = ?",
			entry.ExamSystem, entry.Module, entry.TaskName).
			First(&existing).Error
		if err == nil {
			skipped++
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("查询失败: %v", err)
		}

		if err := db.Create(&entry).Error; err != nil {
			log.Fatalf("第%d行写入失败: %v", i+1, err)
		}
		created++
	}

	log.Printf("导入完成：新增 %d 条，跳过 %d 条", created, skipped)
}
