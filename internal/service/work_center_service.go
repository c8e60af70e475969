package service

import (
	"github.com/shoplead/shoplead_server/internal/metrics"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/repository"
)

// WorkCenterService 工作中心负荷，每次请求都从当前工序重新计算
type WorkCenterService struct {
	opRepo *repository.OperationRepository
}

func NewWorkCenterService(opRepo *repository.OperationRepository) *WorkCenterService {
	return &WorkCenterService{opRepo: opRepo}
}

// Summary 全部工作中心的汇总，按名称排序
func (s *WorkCenterService) Summary() ([]dto.WorkCenterSummary, error) {
	loads, err := s.opRepo.ListLoads("")
	if err != nil {
		return nil, err
	}

	summaries := metrics.Aggregate(loads)
	result := make([]dto.WorkCenterSummary, 0, len(summaries))
	for _, sum := range summaries {
		result = append(result, dto.WorkCenterSummary{
			Name:           sum.WorkCenter,
			PlannedHours:   sum.PlannedHours,
			ActualHours:    sum.ActualHours,
			RemainingHours: sum.RemainingHours,
			Urgency:        string(metrics.ClassifyUrgency(sum.PlannedHours, sum.RemainingHours)),
			JobCount:       sum.JobCount,
			Efficiency:     metrics.Efficiency(sum.PlannedHours, sum.ActualHours),
			Capacity:       metrics.Capacity(sum.PlannedHours),
		})
	}
	return result, nil
}

// Forecast 单个工作中心的完工预测
func (s *WorkCenterService) Forecast(name string) (*dto.ForecastResponse, error) {
	loads, err := s.opRepo.ListLoads(name)
	if err != nil {
		return nil, err
	}
	if len(loads) == 0 {
		return nil, ErrWorkCenterNotFound
	}

	summaries := metrics.Aggregate(loads)
	forecast := toForecast(summaries[0])
	return &forecast, nil
}

// ForecastAll 全部工作中心的完工预测
func (s *WorkCenterService) ForecastAll() ([]dto.ForecastResponse, error) {
	loads, err := s.opRepo.ListLoads("")
	if err != nil {
		return nil, err
	}

	summaries := metrics.Aggregate(loads)
	result := make([]dto.ForecastResponse, 0, len(summaries))
	for _, sum := range summaries {
		result = append(result, toForecast(sum))
	}
	return result, nil
}

func toForecast(sum metrics.Summary) dto.ForecastResponse {
	return dto.ForecastResponse{
		WorkCenter:     sum.WorkCenter,
		PlannedHours:   sum.PlannedHours,
		ActualHours:    sum.ActualHours,
		RemainingHours: sum.RemainingHours,
		ProjectedHours: metrics.Forecast(sum.PlannedHours, sum.ActualHours),
	}
}
