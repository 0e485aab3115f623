package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/studycycle/internal/db"
)

// memoryStore 是 Store 的内存实现，供 CycleManager/SubjectService 测试使用。
// failures 按方法名注入错误，calls 记录所有方法调用次数。
type memoryStore struct {
	nextID      uint
	base        time.Time
	subjects    map[uint]db.Subject
	cycles      map[uint]db.Cycle
	assignments map[uint]db.Assignment
	settings    map[uint]db.UserSetting
	failures    map[string]error
	calls       map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		base:        time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		subjects:    make(map[uint]db.Subject),
		cycles:      make(map[uint]db.Cycle),
		assignments: make(map[uint]db.Assignment),
		settings:    make(map[uint]db.UserSetting),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
}

func (m *memoryStore) enter(method string) error {
	m.calls[method]++
	return m.failures[method]
}

func (m *memoryStore) totalCalls() int {
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *memoryStore) newID() (uint, time.Time) {
	m.nextID++
	return m.nextID, m.base.Add(time.Duration(m.nextID) * time.Minute)
}

func (m *memoryStore) ListSubjects(_ context.Context, userID uint) ([]db.Subject, error) {
	if err := m.enter("ListSubjects"); err != nil {
		return nil, err
	}
	var result []db.Subject
	for _, s := range m.subjects {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	slices.SortFunc(result, func(a, b db.Subject) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	return result, nil
}

func (m *memoryStore) GetSubject(_ context.Context, userID, id uint) (*db.Subject, error) {
	if err := m.enter("GetSubject"); err != nil {
		return nil, err
	}
	s, ok := m.subjects[id]
	if !ok || s.UserID != userID {
		return nil, ErrSubjectNotFound
	}
	return &s, nil
}

func (m *memoryStore) CreateSubject(_ context.Context, subject *db.Subject) error {
	if err := m.enter("CreateSubject"); err != nil {
		return err
	}
	subject.ID, subject.CreatedAt = m.newID()
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *memoryStore) DeleteSubject(_ context.Context, userID, id uint) error {
	if err := m.enter("DeleteSubject"); err != nil {
		return err
	}
	s, ok := m.subjects[id]
	if !ok || s.UserID != userID {
		return ErrSubjectNotFound
	}
	delete(m.subjects, id)
	for aid, a := range m.assignments {
		if a.SubjectID == id {
			delete(m.assignments, aid)
		}
	}
	return nil
}

func (m *memoryStore) ActiveCycle(_ context.Context, userID uint) (*db.Cycle, error) {
	if err := m.enter("ActiveCycle"); err != nil {
		return nil, err
	}
	var found *db.Cycle
	for _, c := range m.cycles {
		if c.UserID != userID || c.Status != db.CycleStatusActive {
			continue
		}
		if found == nil || c.ID > found.ID {
			cycle := c
			found = &cycle
		}
	}
	if found == nil {
		return nil, ErrCycleNotFound
	}
	return found, nil
}

func (m *memoryStore) GetCycle(_ context.Context, userID, id uint) (*db.Cycle, error) {
	if err := m.enter("GetCycle"); err != nil {
		return nil, err
	}
	c, ok := m.cycles[id]
	if !ok || c.UserID != userID {
		return nil, ErrCycleNotFound
	}
	return &c, nil
}

func (m *memoryStore) ListCycles(_ context.Context, userID uint) ([]db.Cycle, error) {
	if err := m.enter("ListCycles"); err != nil {
		return nil, err
	}
	var result []db.Cycle
	for _, c := range m.cycles {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	slices.SortFunc(result, func(a, b db.Cycle) int { return int(b.ID) - int(a.ID) })
	return result, nil
}

func (m *memoryStore) CreateCycle(_ context.Context, cycle *db.Cycle) error {
	if err := m.enter("CreateCycle"); err != nil {
		return err
	}
	cycle.ID, cycle.CreatedAt = m.newID()
	m.cycles[cycle.ID] = *cycle
	return nil
}

func (m *memoryStore) UpdateCycleStatus(_ context.Context, userID, id uint, status db.CycleStatus) error {
	if err := m.enter("UpdateCycleStatus"); err != nil {
		return err
	}
	c, ok := m.cycles[id]
	if !ok || c.UserID != userID {
		return ErrCycleNotFound
	}
	c.Status = status
	m.cycles[id] = c
	return nil
}

func (m *memoryStore) CreateAssignments(_ context.Context, assignments []db.Assignment) error {
	if err := m.enter("CreateAssignments"); err != nil {
		return err
	}
	for i := range assignments {
		assignments[i].ID, assignments[i].CreatedAt = m.newID()
		stored := assignments[i]
		stored.Subject = db.Subject{}
		m.assignments[stored.ID] = stored
	}
	return nil
}

func (m *memoryStore) ListAssignments(_ context.Context, cycleID uint) ([]db.Assignment, error) {
	if err := m.enter("ListAssignments"); err != nil {
		return nil, err
	}
	var result []db.Assignment
	for _, a := range m.assignments {
		if a.CycleID == cycleID {
			a.Subject = m.subjects[a.SubjectID]
			result = append(result, a)
		}
	}
	slices.SortFunc(result, func(a, b db.Assignment) int { return int(a.ID) - int(b.ID) })
	return result, nil
}

func (m *memoryStore) GetAssignment(_ context.Context, userID, id uint) (*db.Assignment, error) {
	if err := m.enter("GetAssignment"); err != nil {
		return nil, err
	}
	a, ok := m.assignments[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	if c, ok := m.cycles[a.CycleID]; !ok || c.UserID != userID {
		return nil, ErrAssignmentNotFound
	}
	a.Subject = m.subjects[a.SubjectID]
	return &a, nil
}

func (m *memoryStore) UpdateCompletedHours(_ context.Context, id uint, hours float64) error {
	if err := m.enter("UpdateCompletedHours"); err != nil {
		return err
	}
	a, ok := m.assignments[id]
	if !ok {
		return ErrAssignmentNotFound
	}
	a.HoursCompleted = hours
	m.assignments[id] = a
	return nil
}

func (m *memoryStore) GetSettings(_ context.Context, userID uint) (*db.UserSetting, error) {
	if err := m.enter("GetSettings"); err != nil {
		return nil, err
	}
	s, ok := m.settings[userID]
	if !ok {
		id, _ := m.newID()
		s = db.UserSetting{ID: id, UserID: userID, AskHours: true}
		m.settings[userID] = s
	}
	return &s, nil
}

func (m *memoryStore) SaveSettings(_ context.Context, setting *db.UserSetting) error {
	if err := m.enter("SaveSettings"); err != nil {
		return err
	}
	m.settings[setting.UserID] = *setting
	return nil
}

// Transaction 执行前做快照，fn 出错时整体恢复
func (m *memoryStore) Transaction(_ context.Context, fn func(Store) error) error {
	if err := m.enter("Transaction"); err != nil {
		return err
	}
	nextID := m.nextID
	subjects := maps.Clone(m.subjects)
	cycles := maps.Clone(m.cycles)
	assignments := maps.Clone(m.assignments)
	settings := maps.Clone(m.settings)

	if err := fn(m); err != nil {
		m.nextID = nextID
		m.subjects = subjects
		m.cycles = cycles
		m.assignments = assignments
		m.settings = settings
		return err
	}
	return nil
}

var _ Store = (*memoryStore)(nil)
