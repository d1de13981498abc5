package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Organization          OrganizationRepository
	User                  UserRepository
	Project               ProjectRepository
	Resource              ResourceRepository
	Assignment            AssignmentRepository
	WorkSchedule          WorkScheduleRepository
	AvailabilityException AvailabilityExceptionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Organization:          NewOrganizationRepo(db),
		User:                  NewUserRepo(db),
		Project:               NewProjectRepo(db),
		Resource:              NewResourceRepo(db),
		Assignment:            NewAssignmentRepo(db),
		WorkSchedule:          NewWorkScheduleRepo(db),
		AvailabilityException: NewAvailabilityExceptionRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
