// Package analytics computes the dashboard numbers. Every figure is derived
// from the viewer's visible slice, so two viewers of the same organisation
// can legitimately see different totals.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/task"
	"crewdesk/internal/team"

	"github.com/google/uuid"
)

type Manager struct {
	db     *database.Database
	logger *slog.Logger
	team   *team.Manager
	tasks  *task.Manager
}

func NewManager(db *database.Database, logger *slog.Logger, teamManager *team.Manager, taskManager *task.Manager) Manager {
	return Manager{
		db:     db,
		logger: logger,
		team:   teamManager,
		tasks:  taskManager,
	}
}

type Overview struct {
	TeamSize       int            `json:"team_size"`
	OnlineMembers  int            `json:"online_members"`
	TasksByColumn  map[string]int `json:"tasks_by_column"`
	OverdueTasks   int            `json:"overdue_tasks"`
	TasksPerMember map[string]int `json:"tasks_per_member"`
}

// Overview aggregates the viewer's visible team and board into the dashboard
// counters.
func (m *Manager) Overview(ctx context.Context, organisationID uuid.UUID, viewerAccountID uuid.UUID) (Overview, error) {
	overview := Overview{
		TasksByColumn:  make(map[string]int),
		TasksPerMember: make(map[string]int),
	}

	directory, err := m.team.LoadDirectory(ctx, organisationID)
	if err != nil {
		return overview, err
	}
	visible := hierarchy.VisibleMembers(directory, viewerAccountID)

	overview.TeamSize = len(visible)
	for _, member := range visible {
		if member.Status == hierarchy.StatusOnline {
			overview.OnlineMembers++
		}
	}

	board, err := m.tasks.Board(ctx, organisationID, viewerAccountID)
	if err != nil {
		return overview, err
	}

	now := time.Now().UTC()
	for _, column := range []struct {
		name  string
		tasks []task.Task
	}{
		{string(database.TaskColumnTodo), board.Todo},
		{string(database.TaskColumnInProgress), board.InProgress},
		{string(database.TaskColumnDone), board.Done},
	} {
		overview.TasksByColumn[column.name] = len(column.tasks)
		for _, t := range column.tasks {
			if t.AssigneeName != "" {
				overview.TasksPerMember[t.AssigneeName]++
			}
			if t.Column != database.TaskColumnDone && t.DueDate.IsSet && t.DueDate.Val.Before(now) {
				overview.OverdueTasks++
			}
		}
	}

	return overview, nil
}
