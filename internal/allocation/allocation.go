package allocation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidInput 在输入无法参与分配计算时返回（空学科集合、未知等级、非正的总时长）
var ErrInvalidInput = errors.New("invalid allocation input")

// Difficulty 学科难度，五级有序枚举
type Difficulty string

// Weight 学科重要程度，三级有序枚举
type Weight string

const (
	DifficultyVeryEasy Difficulty = "very_easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

const (
	WeightLow    Weight = "low"
	WeightMedium Weight = "medium"
	WeightHigh   Weight = "high"
)

var difficultyFactors = map[Difficulty]float64{
	DifficultyVeryEasy: 0.8,
	DifficultyEasy:     0.9,
	DifficultyMedium:   1.0,
	DifficultyHard:     1.2,
	DifficultyVeryHard: 1.4,
}

var weightFactors = map[Weight]float64{
	WeightLow:    1.0,
	WeightMedium: 1.5,
	WeightHigh:   2.0,
}

var difficultyLabels = map[Difficulty]string{
	DifficultyVeryEasy: "Muito fácil",
	DifficultyEasy:     "Fácil",
	DifficultyMedium:   "Médio",
	DifficultyHard:     "Difícil",
	DifficultyVeryHard: "Muito difícil",
}

var weightLabels = map[Weight]string{
	WeightLow:    "Baixa",
	WeightMedium: "Média",
	WeightHigh:   "Alta",
}

// Difficulties 按难度从低到高返回全部取值
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyVeryEasy, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard}
}

// Weights 按重要程度从低到高返回全部取值
func Weights() []Weight {
	return []Weight{WeightLow, WeightMedium, WeightHigh}
}

// Valid 判断难度是否为已知取值
func (d Difficulty) Valid() bool {
	_, ok := difficultyFactors[d]
	return ok
}

// Label 返回界面展示用的葡语名称
func (d Difficulty) Label() string {
	return difficultyLabels[d]
}

// Valid 判断权重是否为已知取值
func (w Weight) Valid() bool {
	_, ok := weightFactors[w]
	return ok
}

// Label 返回界面展示用的葡语名称
func (w Weight) Label() string {
	return weightLabels[w]
}

// ParseDifficulty 接受规范键名（very_easy）或葡语名称（Muito fácil），大小写不敏感
func ParseDifficulty(raw string) (Difficulty, error) {
	key := normalizeKey(raw)
	for d, label := range difficultyLabels {
		if key == string(d) || key == normalizeKey(label) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, raw)
}

// ParseWeight 接受规范键名（low）或葡语名称（Baixa），大小写不敏感
func ParseWeight(raw string) (Weight, error) {
	key := normalizeKey(raw)
	for w, label := range weightLabels {
		if key == string(w) || key == normalizeKey(label) {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: unknown weight %q", ErrInvalidInput, raw)
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.Join(strings.Fields(key), "_")
}

// Subject 是参与分配的最小信息：难度与权重
type Subject struct {
	Difficulty Difficulty
	Weight     Weight
}

// Factor 返回单个学科的权重系数 = 难度系数 × 重要度系数
func Factor(d Difficulty, w Weight) (float64, error) {
	df, ok := difficultyFactors[d]
	if !ok {
		return 0, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, d)
	}
	wf, ok := weightFactors[w]
	if !ok {
		return 0, fmt.Errorf("%w: unknown weight %q", ErrInvalidInput, w)
	}
	return df * wf, nil
}

func totalFactor(all []Subject) (float64, error) {
	if len(all) == 0 {
		return 0, fmt.Errorf("%w: subject set is empty", ErrInvalidInput)
	}

	var total float64
	for _, s := range all {
		f, err := Factor(s.Difficulty, s.Weight)
		if err != nil {
			return 0, err
		}
		total += f
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: total factor is zero", ErrInvalidInput)
	}
	return total, nil
}

func validateHours(totalHours float64) error {
	if math.IsNaN(totalHours) || math.IsInf(totalHours, 0) || totalHours <= 0 {
		return fmt.Errorf("%w: total hours must be positive", ErrInvalidInput)
	}
	return nil
}

// Raw 返回未取整的分配时长 (factor / totalFactor) × totalHours
func Raw(d Difficulty, w Weight, totalHours float64, all []Subject) (float64, error) {
	if err := validateHours(totalHours); err != nil {
		return 0, err
	}
	total, err := totalFactor(all)
	if err != nil {
		return 0, err
	}
	f, err := Factor(d, w)
	if err != nil {
		return 0, err
	}
	return f / total * totalHours, nil
}

// Allocate 计算单个学科分得的周学习时长，结果取最接近的半小时
// all 必须包含该学科本身
func Allocate(d Difficulty, w Weight, totalHours float64, all []Subject) (float64, error) {
	raw, err := Raw(d, w, totalHours, all)
	if err != nil {
		return 0, err
	}
	return RoundHalfHour(raw), nil
}

// AllocateAll 基于同一份学科快照一次性计算全部学科的时长，返回顺序与 subjects 一致
func AllocateAll(totalHours float64, subjects []Subject) ([]float64, error) {
	if err := validateHours(totalHours); err != nil {
		return nil, err
	}
	total, err := totalFactor(subjects)
	if err != nil {
		return nil, err
	}

	hours := make([]float64, len(subjects))
	for i, s := range subjects {
		f, _ := Factor(s.Difficulty, s.Weight)
		hours[i] = RoundHalfHour(f / total * totalHours)
	}
	return hours, nil
}

// RoundHalfHour 四舍五入到 0.5 小时（远离零方向）
func RoundHalfHour(hours float64) float64 {
	return math.Round(hours*2) / 2
}
