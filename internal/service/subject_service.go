package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studycycle/internal/allocation"
	"github.com/studycycle/internal/db"
	"go.uber.org/zap"
)

const maxSubjectNameRunes = 200

var (
	// ErrSubjectNameRequired 科目名称为空
	ErrSubjectNameRequired = errors.New("subject name is required")
	// ErrSubjectNameTooLong 科目名称超出长度限制
	ErrSubjectNameTooLong = errors.New("subject name is too long")
)

// SubjectService 负责科目的登记、查询与删除。
// 难度与权重创建后不可修改，新增科目要到下一个周期才会参与分配。
type SubjectService struct {
	store Store
	log   *zap.Logger
}

// SubjectInput 定义创建科目时的输入
type SubjectInput struct {
	Name       string
	Difficulty string
	Weight     string
	Notes      string
}

// NewSubjectService 构造 SubjectService
func NewSubjectService(store Store, log *zap.Logger) *SubjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubjectService{store: store, log: log}
}

// List 返回用户全部科目，按名称排序
func (s *SubjectService) List(ctx context.Context, userID uint) ([]db.Subject, error) {
	return s.store.ListSubjects(ctx, userID)
}

// Get 根据 ID 获取科目
func (s *SubjectService) Get(ctx context.Context, userID, id uint) (*db.Subject, error) {
	return s.store.GetSubject(ctx, userID, id)
}

// Create 新建科目
func (s *SubjectService) Create(ctx context.Context, userID uint, input SubjectInput) (*db.Subject, error) {
	subject, err := buildSubject(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateSubject(ctx, subject); err != nil {
		s.log.Error("create subject failed", zap.Uint("user_id", userID), zap.String("name", subject.Name), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

// Delete 删除科目及其历史分配
func (s *SubjectService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.store.DeleteSubject(ctx, userID, id); err != nil {
		if !errors.Is(err, ErrSubjectNotFound) {
			s.log.Error("delete subject failed", zap.Uint("user_id", userID), zap.Uint("subject_id", id), zap.Error(err))
		}
		return err
	}
	return nil
}

func buildSubject(userID uint, input SubjectInput) (*db.Subject, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSubjectNameRequired
	}
	if utf8.RuneCountInString(name) > maxSubjectNameRunes {
		return nil, fmt.Errorf("%w: max %d characters", ErrSubjectNameTooLong, maxSubjectNameRunes)
	}

	difficulty := allocation.DifficultyMedium
	if strings.TrimSpace(input.Difficulty) != "" {
		parsed, err := allocation.ParseDifficulty(input.Difficulty)
		if err != nil {
			return nil, err
		}
		difficulty = parsed
	}

	weight := allocation.WeightMedium
	if strings.TrimSpace(input.Weight) != "" {
		parsed, err := allocation.ParseWeight(input.Weight)
		if err != nil {
			return nil, err
		}
		weight = parsed
	}

	return &db.Subject{
		UserID:     userID,
		Name:       name,
		Difficulty: string(difficulty),
		Weight:     string(weight),
		Notes:      strings.TrimSpace(input.Notes),
	}, nil
}
