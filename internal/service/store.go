package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/studycycle/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSubjectNotFound 在科目不存在或不属于当前用户时返回
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrCycleNotFound 在周期不存在或不属于当前用户时返回
	ErrCycleNotFound = errors.New("cycle not found")
	// ErrAssignmentNotFound 在分配记录不存在或不属于当前用户时返回
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Store 是学习数据的持久化能力接口，所有读写均以用户身份为范围。
// Transaction 内的 fn 收到一个绑定到同一事务的 Store，fn 返回错误时全部回滚。
type Store interface {
	ListSubjects(ctx context.Context, userID uint) ([]db.Subject, error)
	GetSubject(ctx context.Context, userID, id uint) (*db.Subject, error)
	CreateSubject(ctx context.Context, subject *db.Subject) error
	DeleteSubject(ctx context.Context, userID, id uint) error

	ActiveCycle(ctx context.Context, userID uint) (*db.Cycle, error)
	GetCycle(ctx context.Context, userID, id uint) (*db.Cycle, error)
	ListCycles(ctx context.Context, userID uint) ([]db.Cycle, error)
	CreateCycle(ctx context.Context, cycle *db.Cycle) error
	UpdateCycleStatus(ctx context.Context, userID, id uint, status db.CycleStatus) error

	CreateAssignments(ctx context.Context, assignments []db.Assignment) error
	ListAssignments(ctx context.Context, cycleID uint) ([]db.Assignment, error)
	GetAssignment(ctx context.Context, userID, id uint) (*db.Assignment, error)
	UpdateCompletedHours(ctx context.Context, id uint, hours float64) error

	GetSettings(ctx context.Context, userID uint) (*db.UserSetting, error)
	SaveSettings(ctx context.Context, setting *db.UserSetting) error

	Transaction(ctx context.Context, fn func(Store) error) error
}

// GormStore 基于 gorm 的 Store 实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 构造 GormStore
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// ListSubjects 按名称排序返回用户的全部科目
func (s *GormStore) ListSubjects(ctx context.Context, userID uint) ([]db.Subject, error) {
	var subjects []db.Subject
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").Order("id ASC").
		Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (s *GormStore) GetSubject(ctx context.Context, userID, id uint) (*db.Subject, error) {
	var subject db.Subject
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

func (s *GormStore) CreateSubject(ctx context.Context, subject *db.Subject) error {
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// DeleteSubject 删除科目及其在各周期中的分配记录
func (s *GormStore) DeleteSubject(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&db.Subject{})
		if result.Error != nil {
			return fmt.Errorf("delete subject: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSubjectNotFound
		}
		if err := tx.Where("subject_id = ?", id).Delete(&db.Assignment{}).Error; err != nil {
			return fmt.Errorf("delete subject assignments: %w", err)
		}
		return nil
	})
}

// ActiveCycle 返回用户当前 active 周期，不存在时返回 ErrCycleNotFound
func (s *GormStore) ActiveCycle(ctx context.Context, userID uint) (*db.Cycle, error) {
	var cycle db.Cycle
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, db.CycleStatusActive).
		Order("created_at DESC").Order("id DESC").
		First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("get active cycle: %w", err)
	}
	return &cycle, nil
}

func (s *GormStore) GetCycle(ctx context.Context, userID, id uint) (*db.Cycle, error) {
	var cycle db.Cycle
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("get cycle: %w", err)
	}
	return &cycle, nil
}

// ListCycles 按创建时间倒序返回历史周期
func (s *GormStore) ListCycles(ctx context.Context, userID uint) ([]db.Cycle, error) {
	var cycles []db.Cycle
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

func (s *GormStore) CreateCycle(ctx context.Context, cycle *db.Cycle) error {
	if err := s.db.WithContext(ctx).Create(cycle).Error; err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateCycleStatus(ctx context.Context, userID, id uint, status db.CycleStatus) error {
	result := s.db.WithContext(ctx).Model(&db.Cycle{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update cycle status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (s *GormStore) CreateAssignments(ctx context.Context, assignments []db.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Omit("Cycle", "Subject").Create(&assignments).Error; err != nil {
		return fmt.Errorf("create assignments: %w", err)
	}
	return nil
}

// ListAssignments 返回周期内的分配记录并预加载科目
func (s *GormStore) ListAssignments(ctx context.Context, cycleID uint) ([]db.Assignment, error) {
	var assignments []db.Assignment
	if err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("cycle_id = ?", cycleID).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// GetAssignment 仅返回属于该用户周期的分配记录
func (s *GormStore) GetAssignment(ctx context.Context, userID, id uint) (*db.Assignment, error) {
	owned := s.db.Model(&db.Cycle{}).Select("id").Where("user_id = ?", userID)

	var assignment db.Assignment
	if err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("id = ? AND cycle_id IN (?)", id, owned).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &assignment, nil
}

func (s *GormStore) UpdateCompletedHours(ctx context.Context, id uint, hours float64) error {
	result := s.db.WithContext(ctx).Model(&db.Assignment{}).
		Where("id = ?", id).
		Update("hours_completed", hours)
	if result.Error != nil {
		return fmt.Errorf("update completed hours: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// GetSettings 读取用户设置，不存在时以 ask_hours=true 创建
func (s *GormStore) GetSettings(ctx context.Context, userID uint) (*db.UserSetting, error) {
	var setting db.UserSetting
	if err := s.db.WithContext(ctx).
		Where(db.UserSetting{UserID: userID}).
		Attrs(db.UserSetting{AskHours: true}).
		FirstOrCreate(&setting).Error; err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &setting, nil
}

func (s *GormStore) SaveSettings(ctx context.Context, setting *db.UserSetting) error {
	if err := s.db.WithContext(ctx).Save(setting).Error; err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

// Transaction 在同一个数据库事务中执行 fn
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
