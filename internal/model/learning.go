package model

// LearningSpeed 学习速度分类
type LearningSpeed string

const (
	SpeedFast   LearningSpeed = "fast"
	SpeedNormal LearningSpeed = "normal"
	SpeedSlow   LearningSpeed = "slow"
)

// DifficultyAdjustment 难度调整建议
type DifficultyAdjustment string

const (
	AdjustIncrease DifficultyAdjustment = "increase"
	AdjustDecrease DifficultyAdjustment = "decrease"
	AdjustNormal   DifficultyAdjustment = "normal"
)
