package services

import (
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"gorm.io/gorm"
)

type DashboardService struct {
	db       *gorm.DB
	resolver *VisibilityResolver
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, resolver: NewVisibilityResolver(db)}
}

type StageCount struct {
	Status   workflow.Status `json:"status"`
	Label    string          `json:"label"`
	Progress int             `json:"progress"`
	Count    int64           `json:"count"`
}

type AssigneeLoad struct {
	UserID      uint    `json:"user_id"`
	Name        string  `json:"name"`
	Active      int64   `json:"active"`
	HoursWorked float64 `json:"hours_worked"`
}

type DashboardStats struct {
	TotalProjects     int64 `json:"total_projects"`
	CompletedProjects int64 `json:"completed_projects"`
	ActiveAssignments int64 `json:"active_assignments"`
	TeamMembers       int64 `json:"team_members"`
}

type DashboardResponse struct {
	Stats        DashboardStats `json:"stats"`
	StageCounts  []StageCount   `json:"stage_counts"`
	AssigneeLoad []AssigneeLoad `json:"assignee_load"`
}

// GetStats computes the dashboard within the operator's visibility scope.
func (s *DashboardService) GetStats(op Operator) (*DashboardResponse, error) {
	cap := s.resolver.Resolve(op)

	projects, err := cap.VisibleProjects()
	if err != nil {
		return nil, err
	}

	projectIDs := make([]uint, 0, len(projects))
	byStatus := map[workflow.Status]int64{}
	var completed int64
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		byStatus[p.Status]++
		if p.Status == workflow.Completed {
			completed++
		}
	}

	stageCounts := make([]StageCount, 0, len(workflow.All()))
	for _, st := range workflow.All() {
		stageCounts = append(stageCounts, StageCount{
			Status:   st,
			Label:    st.Label(),
			Progress: st.Progress(),
			Count:    byStatus[st],
		})
	}

	stats := DashboardStats{
		TotalProjects:     int64(len(projects)),
		CompletedProjects: completed,
	}

	if len(projectIDs) > 0 {
		s.db.Model(&models.Assignment{}).
			Where("project_id IN ? AND status = ?", projectIDs, models.AssignmentActive).
			Count(&stats.ActiveAssignments)
	}

	users, err := cap.VisibleUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.IsTeamMember() {
			stats.TeamMembers++
		}
	}

	var load []AssigneeLoad
	if len(projectIDs) > 0 {
		s.db.Model(&models.Assignment{}).
			Select("user_id, COUNT(*) as active, COALESCE(SUM(hours_worked), 0) as hours_worked").
			Where("project_id IN ? AND status = ?", projectIDs, models.AssignmentActive).
			Group("user_id").
			Order("active DESC").
			Limit(10).
			Scan(&load)

		for i := range load {
			var user models.User
			if err := s.db.First(&user, load[i].UserID).Error; err == nil {
				if user.Name != "" {
					load[i].Name = user.Name
				} else {
					load[i].Name = user.Username
				}
			}
		}
	}

	return &DashboardResponse{
		Stats:        stats,
		StageCounts:  stageCounts,
		AssigneeLoad: load,
	}, nil
}
