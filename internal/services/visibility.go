package services

import (
	"sort"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"gorm.io/gorm"
)

// Operator is the authenticated actor performing an action. It is built
// from the request context and passed in explicitly; services never
// read ambient identity state.
type Operator struct {
	ID   uint
	Role string
}

// Capability answers what a given operator may see and do. One
// implementation exists per role variant so role checks live in exactly
// one place instead of being re-derived ad hoc across handlers.
type Capability interface {
	// CanManageAssignments reports whether the operator may create,
	// update, or remove assignments.
	CanManageAssignments() bool
	// CanMoveProjects reports whether the operator may change a
	// project's workflow stage on the board.
	CanMoveProjects() bool
	// AssignablePool returns the users the operator may assign to the
	// given project, excluding users already assigned to it.
	AssignablePool(projectID uint) ([]models.User, error)
	// VisibleProjects returns the projects the operator may see.
	VisibleProjects() ([]models.Project, error)
	// VisibleClients returns the clients the operator may see.
	VisibleClients() ([]models.Client, error)
	// VisibleUsers returns the users the operator may see.
	VisibleUsers() ([]models.User, error)
}

// VisibilityResolver computes a Capability for an operator. Resolution
// happens per request; results are never cached across sessions because
// the underlying delegation graph can change at any time.
type VisibilityResolver struct {
	db          *gorm.DB
	delegations *DelegationService
}

func NewVisibilityResolver(db *gorm.DB) *VisibilityResolver {
	return &VisibilityResolver{
		db:          db,
		delegations: NewDelegationService(db),
	}
}

// Resolve returns the capability implementation for the operator's role.
func (r *VisibilityResolver) Resolve(op Operator) Capability {
	switch op.Role {
	case models.RoleAdmin:
		return &adminCapability{db: r.db}
	case models.RoleProjectManager:
		return &managerCapability{db: r.db, delegations: r.delegations, managerID: op.ID}
	default:
		return &contributorCapability{db: r.db, userID: op.ID}
	}
}

// poolPrecedence orders an assignable pool for predictable UI grouping:
// designers, then developers, then marketing, then everyone else.
func poolPrecedence(role string) int {
	switch role {
	case models.RoleDesigner:
		return 0
	case models.RoleDeveloper:
		return 1
	case models.RoleMarketing:
		return 2
	default:
		return 3
	}
}

func sortPool(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		pi, pj := poolPrecedence(users[i].Role), poolPrecedence(users[j].Role)
		if pi != pj {
			return pi < pj
		}
		return users[i].Name < users[j].Name
	})
}

// assignedUserIDs returns the set of users already assigned to a project.
func assignedUserIDs(db *gorm.DB, projectID uint) (map[uint]bool, error) {
	var ids []uint
	if err := db.Model(&models.Assignment{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func filterAssigned(users []models.User, assigned map[uint]bool) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if !assigned[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

// --- admin ---

type adminCapability struct {
	db *gorm.DB
}

func (a *adminCapability) CanManageAssignments() bool { return true }
func (a *adminCapability) CanMoveProjects() bool      { return true }

func (a *adminCapability) AssignablePool(projectID uint) ([]models.User, error) {
	var users []models.User
	if err := a.db.Where("is_active = ?", true).
		Where("role NOT IN ?", []string{models.RoleAdmin, models.RoleProjectManager}).
		Find(&users).Error; err != nil {
		return nil, err
	}

	assigned, err := assignedUserIDs(a.db, projectID)
	if err != nil {
		return nil, err
	}
	pool := filterAssigned(users, assigned)
	sortPool(pool)
	return pool, nil
}

func (a *adminCapability) VisibleProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := a.db.Preload("Client").Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (a *adminCapability) VisibleClients() ([]models.Client, error) {
	var clients []models.Client
	if err := a.db.Order("company_name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (a *adminCapability) VisibleUsers() ([]models.User, error) {
	var users []models.User
	if err := a.db.Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// --- project manager ---

type managerCapability struct {
	db          *gorm.DB
	delegations *DelegationService
	managerID   uint
}

func (m *managerCapability) CanManageAssignments() bool { return true }
func (m *managerCapability) CanMoveProjects() bool      { return true }

func (m *managerCapability) AssignablePool(projectID uint) ([]models.User, error) {
	members, err := m.delegations.MembersOf(m.managerID)
	if err != nil {
		return nil, err
	}

	active := make([]models.User, 0, len(members))
	for _, u := range members {
		if u.IsActive {
			active = append(active, u)
		}
	}

	assigned, err := assignedUserIDs(m.db, projectID)
	if err != nil {
		return nil, err
	}
	pool := filterAssigned(active, assigned)
	sortPool(pool)
	return pool, nil
}

// visibleClientIDs resolves the clients delegated to this manager.
func (m *managerCapability) visibleClientIDs() ([]uint, error) {
	var ids []uint
	if err := m.db.Model(&models.ClientDelegation{}).
		Where("manager_id = ?", m.managerID).
		Pluck("client_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *managerCapability) VisibleProjects() ([]models.Project, error) {
	clientIDs, err := m.visibleClientIDs()
	if err != nil {
		return nil, err
	}
	if len(clientIDs) == 0 {
		return []models.Project{}, nil
	}

	var projects []models.Project
	if err := m.db.Where("client_id IN ?", clientIDs).
		Preload("Client").
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (m *managerCapability) VisibleClients() ([]models.Client, error) {
	clientIDs, err := m.visibleClientIDs()
	if err != nil {
		return nil, err
	}
	if len(clientIDs) == 0 {
		return []models.Client{}, nil
	}

	var clients []models.Client
	if err := m.db.Where("id IN ?", clientIDs).
		Order("company_name ASC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (m *managerCapability) VisibleUsers() ([]models.User, error) {
	members, err := m.delegations.MembersOf(m.managerID)
	if err != nil {
		return nil, err
	}
	sortPool(members)
	return members, nil
}

// --- individual contributor ---

type contributorCapability struct {
	db     *gorm.DB
	userID uint
}

func (c *contributorCapability) CanManageAssignments() bool { return false }
func (c *contributorCapability) CanMoveProjects() bool      { return false }

func (c *contributorCapability) AssignablePool(uint) ([]models.User, error) {
	return []models.User{}, nil
}

// VisibleProjects for a contributor is the set of projects where they
// are the assignee, through either the ledger or the legacy
// single-assignee field.
func (c *contributorCapability) VisibleProjects() ([]models.Project, error) {
	var ids []uint
	if err := c.db.Model(&models.Assignment{}).
		Where("user_id = ?", c.userID).
		Pluck("project_id", &ids).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	query := c.db.Preload("Client").Order("created_at DESC")
	if len(ids) > 0 {
		query = query.Where("id IN ? OR assigned_user_id = ?", ids, c.userID)
	} else {
		query = query.Where("assigned_user_id = ?", c.userID)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *contributorCapability) VisibleClients() ([]models.Client, error) {
	return []models.Client{}, nil
}

func (c *contributorCapability) VisibleUsers() ([]models.User, error) {
	var self models.User
	if err := c.db.First(&self, c.userID).Error; err != nil {
		return nil, err
	}
	return []models.User{self}, nil
}
