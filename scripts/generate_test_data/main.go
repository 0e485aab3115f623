package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/studycycle/internal/allocation"
	"github.com/studycycle/internal/config"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/service"
	"gorm.io/gorm"
)

const (
	demoUsername    = "demo"
	demoPassword    = "demo123"
	demoWeeklyHours = 30
)

var demoSubjects = []service.SubjectInput{
	{Name: "Direito Constitucional", Difficulty: string(allocation.DifficultyHard), Weight: string(allocation.WeightHigh), Notes: "- princípios fundamentais\n- **controle de constitucionalidade**"},
	{Name: "Português", Difficulty: string(allocation.DifficultyMedium), Weight: string(allocation.WeightHigh)},
	{Name: "Raciocínio Lógico", Difficulty: string(allocation.DifficultyVeryHard), Weight: string(allocation.WeightMedium)},
	{Name: "Informática", Difficulty: string(allocation.DifficultyEasy), Weight: string(allocation.WeightLow)},
	{Name: "Atualidades", Difficulty: string(allocation.DifficultyVeryEasy), Weight: string(allocation.WeightLow)},
}

// 测试数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	detail, err := seedDemoData(context.Background(), db.DB)
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("用户: %s (密码: %s)\n", demoUsername, demoPassword)
	fmt.Printf("周期: #%d, %v 小时/周, %d 个科目\n", detail.Cycle.ID, detail.Cycle.WeeklyHours, len(detail.Assignments))
}

// seedDemoData 创建演示用户、科目与一个带部分进度的周期；重复执行时复用已有用户与科目
func seedDemoData(ctx context.Context, gdb *gorm.DB) (*service.CycleDetail, error) {
	auth := service.NewAuthService(gdb)
	user, err := auth.Register(ctx, demoUsername, demoPassword)
	if errors.Is(err, service.ErrUsernameTaken) {
		user, err = auth.Authenticate(ctx, demoUsername, demoPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("prepare demo user: %w", err)
	}

	store := service.NewGormStore(gdb)
	subjects := service.NewSubjectService(store, nil)
	cycles := service.NewCycleManager(store, nil)

	existing, err := subjects.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, subject := range existing {
		known[subject.Name] = struct{}{}
	}
	for _, input := range demoSubjects {
		if _, ok := known[input.Name]; ok {
			continue
		}
		if _, err := subjects.Create(ctx, user.ID, input); err != nil {
			return nil, fmt.Errorf("create subject %q: %w", input.Name, err)
		}
	}

	detail, err := cycles.CreateCycle(ctx, user.ID, demoWeeklyHours)
	if err != nil {
		return nil, err
	}

	// 前两门科目分别完成全部与一半
	for i, assignment := range detail.Assignments {
		var delta float64
		switch i {
		case 0:
			delta = assignment.HoursAssigned
		case 1:
			delta = assignment.HoursAssigned / 2
		default:
			continue
		}
		updated, err := cycles.AdjustHours(ctx, user.ID, assignment.ID, delta)
		if err != nil {
			return nil, err
		}
		detail.Assignments[i].HoursCompleted = updated.HoursCompleted
	}

	fmt.Println("✅ 演示周期创建完成")
	return detail, nil
}
