package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"planboard/backend/internal/model"
	"planboard/backend/internal/repository"
)

// newTestRepository 构造全 mock 的 Repository 聚合
func newTestRepository() *repository.Repository {
	return &repository.Repository{
		Organization:          newMockOrganizationRepo(),
		User:                  newMockUserRepo(),
		Project:               newMockProjectRepo(),
		Resource:              newMockResourceRepo(),
		Assignment:            newMockAssignmentRepo(),
		WorkSchedule:          newMockWorkScheduleRepo(),
		AvailabilityException: newMockExceptionRepo(),
	}
}

// ── Mock OrganizationRepository ──

type mockOrganizationRepo struct {
	orgs map[string]*model.Organization
}

func newMockOrganizationRepo() *mockOrganizationRepo {
	return &mockOrganizationRepo{orgs: make(map[string]*model.Organization)}
}

func (m *mockOrganizationRepo) Create(_ context.Context, org *model.Organization) error {
	if org.OrgID == "" {
		org.OrgID = "org-" + org.Slug
	}
	if org.Version == 0 {
		org.Version = 1
	}
	m.orgs[org.OrgID] = org
	return nil
}

func (m *mockOrganizationRepo) GetByID(_ context.Context, id string) (*model.Organization, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) GetBySlug(_ context.Context, slug string) (*model.Organization, error) {
	for _, o := range m.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) List(_ context.Context) ([]model.Organization, error) {
	var result []model.Organization
	for _, o := range m.orgs {
		result = append(result, *o)
	}
	return result, nil
}

func (m *mockOrganizationRepo) Update(_ context.Context, org *model.Organization) error {
	m.orgs[org.OrgID] = org
	return nil
}

func (m *mockOrganizationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.orgs, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByOrg(_ context.Context, orgID string, page, pageSize int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.OrgID == orgID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	start := (page - 1) * pageSize
	if start >= len(result) {
		return []model.User{}, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects map[string]*model.Project
	seq      int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ProjectID == "" {
		m.seq++
		project.ProjectID = fmt.Sprintf("proj-%d", m.seq)
	}
	if project.Version == 0 {
		project.Version = 1
	}
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) ListByOrg(_ context.Context, orgID string, status string, page, pageSize int) ([]model.Project, int64, error) {
	var result []model.Project
	for _, p := range m.projects {
		if p.OrgID != orgID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProjectID < result[j].ProjectID })
	total := int64(len(result))
	start := (page - 1) * pageSize
	if start >= len(result) {
		return []model.Project{}, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.projects, id)
	return nil
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources map[string]*model.Resource
	seq       int
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{resources: make(map[string]*model.Resource)}
}

func (m *mockResourceRepo) Create(_ context.Context, resource *model.Resource) error {
	if resource.ResourceID == "" {
		m.seq++
		resource.ResourceID = fmt.Sprintf("res-%d", m.seq)
	}
	if resource.Version == 0 {
		resource.Version = 1
	}
	m.resources[resource.ResourceID] = resource
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResourceRepo) ListByOrg(_ context.Context, orgID string, activeOnly bool) ([]model.Resource, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if r.OrgID != orgID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ResourceID < result[j].ResourceID })
	return result, nil
}

func (m *mockResourceRepo) Update(_ context.Context, resource *model.Resource) error {
	m.resources[resource.ResourceID] = resource
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.resources, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.ProjectAssignment
	seq         int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.ProjectAssignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.ProjectAssignment) error {
	if assignment.AssignmentID == "" {
		m.seq++
		assignment.AssignmentID = fmt.Sprintf("asg-%d", m.seq)
	}
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ProjectAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByProject(_ context.Context, projectID string) ([]model.ProjectAssignment, error) {
	var result []model.ProjectAssignment
	for _, a := range m.assignments {
		if a.ProjectID == projectID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) ListByResource(_ context.Context, resourceID string) ([]model.ProjectAssignment, error) {
	var result []model.ProjectAssignment
	for _, a := range m.assignments {
		if a.ResourceID == resourceID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.ProjectAssignment) error {
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.assignments, id)
	return nil
}

// ── Mock WorkScheduleRepository ──

type mockWorkScheduleRepo struct {
	schedules map[string]*model.WorkSchedule
	seq       int
}

func newMockWorkScheduleRepo() *mockWorkScheduleRepo {
	return &mockWorkScheduleRepo{schedules: make(map[string]*model.WorkSchedule)}
}

func (m *mockWorkScheduleRepo) ListByResource(_ context.Context, resourceID string) ([]model.WorkSchedule, error) {
	var result []model.WorkSchedule
	for _, s := range m.schedules {
		if s.ResourceID == resourceID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DayOfWeek < result[j].DayOfWeek })
	return result, nil
}

func (m *mockWorkScheduleRepo) GetByID(_ context.Context, id string) (*model.WorkSchedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkScheduleRepo) ReplaceByResource(_ context.Context, resourceID string, schedules []model.WorkSchedule) error {
	for id, s := range m.schedules {
		if s.ResourceID == resourceID {
			delete(m.schedules, id)
		}
	}
	for i := range schedules {
		m.seq++
		schedules[i].ScheduleID = fmt.Sprintf("ws-%d", m.seq)
		schedules[i].Version = 1
		s := schedules[i]
		m.schedules[s.ScheduleID] = &s
	}
	return nil
}

func (m *mockWorkScheduleRepo) Update(_ context.Context, schedule *model.WorkSchedule) error {
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

// ── Mock AvailabilityExceptionRepository ──

type mockExceptionRepo struct {
	exceptions map[string]*model.AvailabilityException
	seq        int
}

func newMockExceptionRepo() *mockExceptionRepo {
	return &mockExceptionRepo{exceptions: make(map[string]*model.AvailabilityException)}
}

func (m *mockExceptionRepo) Create(_ context.Context, ex *model.AvailabilityException) error {
	if ex.ExceptionID == "" {
		m.seq++
		ex.ExceptionID = fmt.Sprintf("exc-%d", m.seq)
	}
	if ex.Version == 0 {
		ex.Version = 1
	}
	m.exceptions[ex.ExceptionID] = ex
	return nil
}

func (m *mockExceptionRepo) GetByID(_ context.Context, id string) (*model.AvailabilityException, error) {
	if e, ok := m.exceptions[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExceptionRepo) ListByResource(_ context.Context, resourceID string) ([]model.AvailabilityException, error) {
	var result []model.AvailabilityException
	for _, e := range m.exceptions {
		if e.ResourceID == resourceID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExceptionDate.Before(result[j].ExceptionDate) })
	return result, nil
}

func (m *mockExceptionRepo) ListActiveByResourceAndRange(_ context.Context, resourceID string, start, end *time.Time) ([]model.AvailabilityException, error) {
	var result []model.AvailabilityException
	for _, e := range m.exceptions {
		if e.ResourceID != resourceID || !e.IsActive {
			continue
		}
		if start != nil && e.ExceptionDate.Before(*start) {
			continue
		}
		if end != nil && e.ExceptionDate.After(*end) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExceptionDate.Before(result[j].ExceptionDate) })
	return result, nil
}

func (m *mockExceptionRepo) Update(_ context.Context, ex *model.AvailabilityException) error {
	m.exceptions[ex.ExceptionID] = ex
	return nil
}

func (m *mockExceptionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.exceptions, id)
	return nil
}

// ── Mock 缓存与黑名单 ──

type mockCache struct {
	entries     map[string]string
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) GetAvailabilitySummary(_ context.Context, resourceID, startDate, endDate string) (string, error) {
	return m.entries[resourceID+":"+startDate+":"+endDate], nil
}

func (m *mockCache) SetAvailabilitySummary(_ context.Context, resourceID, startDate, endDate, payload string, _ time.Duration) error {
	m.entries[resourceID+":"+startDate+":"+endDate] = payload
	return nil
}

func (m *mockCache) InvalidateAvailability(_ context.Context, resourceID string) error {
	m.invalidated = append(m.invalidated, resourceID)
	for key := range m.entries {
		if len(key) >= len(resourceID) && key[:len(resourceID)] == resourceID {
			delete(m.entries, key)
		}
	}
	return nil
}

type mockBlacklist struct {
	revoked map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.revoked[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], nil
}

// [自证通过] internal/service/mock_repos_test.go
