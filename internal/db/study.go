package db

import (
	"time"

	"gorm.io/gorm"
)

// CycleStatus 学习周期状态
type CycleStatus string

const (
	CycleStatusActive    CycleStatus = "active"
	CycleStatusCompleted CycleStatus = "completed"
	// CycleStatusPaused 仅为兼容保留，目前没有任何流程会进入或离开该状态
	CycleStatusPaused CycleStatus = "paused"
)

// Subject 用户登记的学习科目（matéria）
// Difficulty/Weight 创建后不可修改，存储规范键名（very_easy / low 等）
type Subject struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	Name       string `gorm:"size:200;not null"`
	Difficulty string `gorm:"size:20;not null"`
	Weight     string `gorm:"size:20;not null"`
	Notes      string `gorm:"type:text"`
}

// Cycle 一次按周分配的学习计划
// 同一用户同一时间至多一个 active 周期，由 CycleManager 保证
type Cycle struct {
	gorm.Model
	UserID      uint        `gorm:"index;not null"`
	Name        string      `gorm:"size:200;not null"`
	WeeklyHours float64     `gorm:"not null"`
	Status      CycleStatus `gorm:"size:20;index;not null"`
}

// Assignment 周期与科目的关联记录
// HoursAssigned 在周期创建时计算后不再变化；HoursCompleted 不小于 0，可超过目标
type Assignment struct {
	gorm.Model
	CycleID        uint    `gorm:"index;not null"`
	Cycle          Cycle   `gorm:"constraint:OnDelete:CASCADE"`
	SubjectID      uint    `gorm:"index;not null"`
	Subject        Subject `gorm:"constraint:OnDelete:CASCADE"`
	HoursAssigned  float64 `gorm:"not null"`
	HoursCompleted float64 `gorm:"not null;default:0"`
}

// UserSetting 保存是否需要重新询问周学时、上次使用的周学时以及当前周期
type UserSetting struct {
	ID             uint `gorm:"primarykey"`
	UserID         uint `gorm:"uniqueIndex;not null"`
	AskHours       bool `gorm:"not null"`
	WeeklyHours    *float64
	CurrentCycleID *uint
	UpdatedAt      time.Time
}

// TableName 保持与旧数据表命名一致
func (UserSetting) TableName() string {
	return "user_settings"
}
