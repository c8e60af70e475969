package metrics

import (
	"math"
	"sort"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "Normal"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

const (
	criticalRatio = 0.5
	highRatio     = 0.2

	// 零进度时的预测缓冲
	zeroProgressBuffer = 1.1
	// 工作中心可用产能相对计划工时的系数
	capacityFactor = 1.2
)

// Load 一道工序对工作中心负荷的贡献
type Load struct {
	JobNumber    string
	WorkCenter   string
	PlannedHours float64
	ActualHours  float64
}

// Summary 工作中心汇总，每次请求重新计算，不落库
type Summary struct {
	WorkCenter     string
	PlannedHours   float64
	ActualHours    float64
	RemainingHours float64
	JobCount       int
}

// Remaining 剩余工时，实际超过计划时为 0
func Remaining(planned, actual float64) float64 {
	return math.Max(planned-actual, 0)
}

// Aggregate 按工作中心分组求和，结果按名称排序
func Aggregate(loads []Load) []Summary {
	type acc struct {
		summary Summary
		jobs    map[string]struct{}
	}

	groups := make(map[string]*acc)
	for _, l := range loads {
		g, ok := groups[l.WorkCenter]
		if !ok {
			g = &acc{summary: Summary{WorkCenter: l.WorkCenter}, jobs: make(map[string]struct{})}
			groups[l.WorkCenter] = g
		}
		g.summary.PlannedHours += l.PlannedHours
		g.summary.ActualHours += l.ActualHours
		g.summary.RemainingHours += Remaining(l.PlannedHours, l.ActualHours)
		g.jobs[l.JobNumber] = struct{}{}
	}

	summaries := make([]Summary, 0, len(groups))
	for _, g := range groups {
		g.summary.JobCount = len(g.jobs)
		summaries = append(summaries, g.summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].WorkCenter < summaries[j].WorkCenter
	})
	return summaries
}

// ClassifyUrgency ratio = remaining / planned；0.5 与 0.2 两个边界都归入较低一档
func ClassifyUrgency(planned, remaining float64) Urgency {
	if planned <= 0 {
		return UrgencyNormal
	}
	ratio := remaining / planned
	switch {
	case ratio > criticalRatio:
		return UrgencyCritical
	case ratio > highRatio:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}

// Forecast 按当前进度估算完成所需总工时
func Forecast(planned, actual float64) float64 {
	if planned <= 0 {
		return 0
	}
	if actual <= 0 {
		return planned * zeroProgressBuffer
	}
	progressRate := actual / planned
	return planned / progressRate
}

// Efficiency 实际/计划百分比，四舍五入到整数
func Efficiency(planned, actual float64) int {
	if planned <= 0 {
		return 0
	}
	return int(math.Round(actual / planned * 100))
}

func Capacity(planned float64) float64 {
	return planned * capacityFactor
}
