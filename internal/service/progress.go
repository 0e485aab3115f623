package service

import "github.com/studycycle/internal/db"

// SubjectRatio 返回单个科目的完成比例，上限为 1；目标时长不为正时记为 0
func SubjectRatio(a db.Assignment) float64 {
	if a.HoursAssigned <= 0 {
		return 0
	}
	ratio := a.HoursCompleted / a.HoursAssigned
	if ratio > 1 {
		return 1
	}
	return ratio
}

// IsComplete 完成时长达到或超过目标即视为完成
func IsComplete(a db.Assignment) bool {
	return a.HoursCompleted >= a.HoursAssigned
}

// OverallProgress 是各科完成比例的平均值 ×100，而不是总时长之比：
// 单科超额不能弥补其他科目的欠缺，只有每一科都达标时才为 100
func OverallProgress(assignments []db.Assignment) float64 {
	if len(assignments) == 0 {
		return 0
	}

	var sum float64
	for _, a := range assignments {
		sum += SubjectRatio(a)
	}
	return sum / float64(len(assignments)) * 100
}

// Totals 汇总目标时长与已完成时长
func Totals(assignments []db.Assignment) (assigned, completed float64) {
	for _, a := range assignments {
		assigned += a.HoursAssigned
		completed += a.HoursCompleted
	}
	return assigned, completed
}
