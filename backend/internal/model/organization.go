package model

// Organization 组织表（多租户根实体）— 对应 organizations
type Organization struct {
	OrgID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"org_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Slug     string `gorm:"type:varchar(50);not null"                      json:"slug"`
	Currency string `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	VersionedModel
}

// TableName 指定表名
func (Organization) TableName() string { return "organizations" }

// [自证通过] internal/model/organization.go
