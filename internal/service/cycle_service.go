package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/studycycle/internal/allocation"
	"github.com/studycycle/internal/db"
	"go.uber.org/zap"
)

const (
	// MinWeeklyHours 每周学时下限
	MinWeeklyHours = 1.0
	// MaxWeeklyHours 每周学时上限（一周 168 小时）
	MaxWeeklyHours = 168.0
	// DefaultCycleName 新周期的默认名称
	DefaultCycleName = "Ciclo atual"
)

var (
	// ErrWeeklyHoursOutOfRange 周学时不在 [1,168] 区间
	ErrWeeklyHoursOutOfRange = errors.New("weekly hours must be between 1 and 168")
	// ErrNoSubjects 没有任何科目时无法生成周期
	ErrNoSubjects = errors.New("at least one subject is required to create a cycle")
	// ErrInvalidDelta 调整量不是有限实数
	ErrInvalidDelta = errors.New("hour delta must be a finite number")
)

// CycleManager 负责学习周期的创建、进度调整与重置
type CycleManager struct {
	store Store
	log   *zap.Logger
}

// Overview 汇总当前周期的看板数据
type Overview struct {
	Cycle           *db.Cycle
	Assignments     []db.Assignment
	Settings        db.UserSetting
	SubjectCount    int
	TotalAssigned   float64
	TotalCompleted  float64
	OverallProgress float64
	NeedsHoursSetup bool
}

// CycleSummary 是历史列表中的一行
type CycleSummary struct {
	Cycle           db.Cycle
	AssignmentCount int
	TotalAssigned   float64
	TotalCompleted  float64
	OverallProgress float64
}

// CycleDetail 为单个周期及其分配记录
type CycleDetail struct {
	Cycle       db.Cycle
	Assignments []db.Assignment
}

// NewCycleManager 构造 CycleManager，log 为 nil 时不输出日志
func NewCycleManager(store Store, log *zap.Logger) *CycleManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &CycleManager{store: store, log: log}
}

// ValidateWeeklyHours 校验周学时取值
func ValidateWeeklyHours(hours float64) error {
	if math.IsNaN(hours) || hours < MinWeeklyHours || hours > MaxWeeklyHours {
		return fmt.Errorf("%w: got %v", ErrWeeklyHoursOutOfRange, hours)
	}
	return nil
}

// CreateCycle 按当前全部科目生成新周期。
// 旧的 active 周期、新周期、全部分配记录与用户设置在同一事务中写入，任一步失败全部回滚。
func (m *CycleManager) CreateCycle(ctx context.Context, userID uint, weeklyHours float64) (*CycleDetail, error) {
	if err := ValidateWeeklyHours(weeklyHours); err != nil {
		return nil, err
	}

	var detail *CycleDetail
	err := m.store.Transaction(ctx, func(tx Store) error {
		subjects, err := tx.ListSubjects(ctx, userID)
		if err != nil {
			return err
		}
		if len(subjects) == 0 {
			return ErrNoSubjects
		}

		snapshot := make([]allocation.Subject, len(subjects))
		for i, subject := range subjects {
			snapshot[i] = allocation.Subject{
				Difficulty: allocation.Difficulty(subject.Difficulty),
				Weight:     allocation.Weight(subject.Weight),
			}
		}
		hours, err := allocation.AllocateAll(weeklyHours, snapshot)
		if err != nil {
			return err
		}

		previous, err := tx.ActiveCycle(ctx, userID)
		switch {
		case err == nil:
			if err := tx.UpdateCycleStatus(ctx, userID, previous.ID, db.CycleStatusCompleted); err != nil {
				return err
			}
		case !errors.Is(err, ErrCycleNotFound):
			return err
		}

		cycle := db.Cycle{
			UserID:      userID,
			Name:        DefaultCycleName,
			WeeklyHours: weeklyHours,
			Status:      db.CycleStatusActive,
		}
		if err := tx.CreateCycle(ctx, &cycle); err != nil {
			return err
		}

		assignments := make([]db.Assignment, len(subjects))
		for i, subject := range subjects {
			assignments[i] = db.Assignment{
				CycleID:       cycle.ID,
				SubjectID:     subject.ID,
				HoursAssigned: hours[i],
			}
		}
		if err := tx.CreateAssignments(ctx, assignments); err != nil {
			return err
		}

		setting, err := tx.GetSettings(ctx, userID)
		if err != nil {
			return err
		}
		setting.AskHours = false
		setting.WeeklyHours = &weeklyHours
		setting.CurrentCycleID = &cycle.ID
		if err := tx.SaveSettings(ctx, setting); err != nil {
			return err
		}

		for i := range assignments {
			assignments[i].Subject = subjects[i]
		}
		detail = &CycleDetail{Cycle: cycle, Assignments: assignments}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNoSubjects) {
			m.log.Error("create cycle failed", zap.Uint("user_id", userID), zap.Float64("weekly_hours", weeklyHours), zap.Error(err))
		}
		return nil, err
	}

	m.log.Info("cycle created",
		zap.Uint("user_id", userID),
		zap.Uint("cycle_id", detail.Cycle.ID),
		zap.Int("subjects", len(detail.Assignments)),
		zap.Float64("weekly_hours", weeklyHours),
	)
	return detail, nil
}

// AdjustHours 将已完成时长增加 delta，结果不低于 0，不设上限
func (m *CycleManager) AdjustHours(ctx context.Context, userID, assignmentID uint, delta float64) (*db.Assignment, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, ErrInvalidDelta
	}

	assignment, err := m.store.GetAssignment(ctx, userID, assignmentID)
	if err != nil {
		if !errors.Is(err, ErrAssignmentNotFound) {
			m.log.Error("load assignment failed", zap.Uint("user_id", userID), zap.Uint("assignment_id", assignmentID), zap.Error(err))
		}
		return nil, err
	}

	completed := math.Max(0, assignment.HoursCompleted+delta)
	if err := m.store.UpdateCompletedHours(ctx, assignment.ID, completed); err != nil {
		m.log.Error("update completed hours failed", zap.Uint("user_id", userID), zap.Uint("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	assignment.HoursCompleted = completed
	return assignment, nil
}

// ResetCycle 将 active 周期标记为 completed，并让用户重新设置周学时。
// 没有 active 周期时同样会把 ask_hours 置为 true；历史记录保留不删除。
func (m *CycleManager) ResetCycle(ctx context.Context, userID uint) error {
	err := m.store.Transaction(ctx, func(tx Store) error {
		active, err := tx.ActiveCycle(ctx, userID)
		switch {
		case err == nil:
			if err := tx.UpdateCycleStatus(ctx, userID, active.ID, db.CycleStatusCompleted); err != nil {
				return err
			}
		case !errors.Is(err, ErrCycleNotFound):
			return err
		}

		setting, err := tx.GetSettings(ctx, userID)
		if err != nil {
			return err
		}
		setting.AskHours = true
		setting.CurrentCycleID = nil
		return tx.SaveSettings(ctx, setting)
	})
	if err != nil {
		m.log.Error("reset cycle failed", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}

	m.log.Info("cycle reset", zap.Uint("user_id", userID))
	return nil
}

// Overview 读取看板数据：当前周期、各科分配、总时长与整体进度
func (m *CycleManager) Overview(ctx context.Context, userID uint) (*Overview, error) {
	setting, err := m.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	subjects, err := m.store.ListSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		Settings:     *setting,
		SubjectCount: len(subjects),
		Assignments:  []db.Assignment{},
	}

	active, err := m.store.ActiveCycle(ctx, userID)
	switch {
	case err == nil:
		assignments, err := m.store.ListAssignments(ctx, active.ID)
		if err != nil {
			return nil, err
		}
		overview.Cycle = active
		overview.Assignments = assignments
		overview.TotalAssigned, overview.TotalCompleted = Totals(assignments)
		overview.OverallProgress = OverallProgress(assignments)
	case !errors.Is(err, ErrCycleNotFound):
		return nil, err
	}

	overview.NeedsHoursSetup = setting.AskHours && overview.SubjectCount > 0 && overview.Cycle == nil
	return overview, nil
}

// History 返回全部周期（含已完成）及各自的进度
func (m *CycleManager) History(ctx context.Context, userID uint) ([]CycleSummary, error) {
	cycles, err := m.store.ListCycles(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CycleSummary, 0, len(cycles))
	for _, cycle := range cycles {
		assignments, err := m.store.ListAssignments(ctx, cycle.ID)
		if err != nil {
			return nil, err
		}
		assigned, completed := Totals(assignments)
		summaries = append(summaries, CycleSummary{
			Cycle:           cycle,
			AssignmentCount: len(assignments),
			TotalAssigned:   assigned,
			TotalCompleted:  completed,
			OverallProgress: OverallProgress(assignments),
		})
	}
	return summaries, nil
}

// Detail 返回指定周期及其分配记录
func (m *CycleManager) Detail(ctx context.Context, userID, cycleID uint) (*CycleDetail, error) {
	cycle, err := m.store.GetCycle(ctx, userID, cycleID)
	if err != nil {
		return nil, err
	}

	assignments, err := m.store.ListAssignments(ctx, cycle.ID)
	if err != nil {
		return nil, err
	}
	return &CycleDetail{Cycle: *cycle, Assignments: assignments}, nil
}

// ActiveDetail 返回当前 active 周期，没有时返回 ErrCycleNotFound
func (m *CycleManager) ActiveDetail(ctx context.Context, userID uint) (*CycleDetail, error) {
	cycle, err := m.store.ActiveCycle(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.Detail(ctx, userID, cycle.ID)
}
