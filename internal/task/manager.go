// Package task manages the kanban board. Every read is filtered and every
// write is authorised against the viewer's slice of the hierarchy, so a task
// assigned outside someone's subtree simply does not exist for them.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crewdesk/internal/audit"
	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/notifications"
	"crewdesk/internal/team"
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

// ErrAssigneeNotEligible means the chosen assignee is outside the actor's
// assignable set.
var ErrAssigneeNotEligible = errors.New("task: assignee is not in your team")

type Manager struct {
	db       *database.Database
	logger   *slog.Logger
	team     *team.Manager
	auditor  *audit.Auditor
	notifier *notifications.Manager
}

func NewManager(db *database.Database, logger *slog.Logger, teamManager *team.Manager, auditor *audit.Auditor, notifier *notifications.Manager) Manager {
	return Manager{
		db:       db,
		logger:   logger,
		team:     teamManager,
		auditor:  auditor,
		notifier: notifier,
	}
}

// Task wraps the stored record with the assignee identity accessors the
// visibility filter matches on.
type Task struct {
	database.Task
}

func (t Task) AssigneeAccount() util.Optional[uuid.UUID] {
	return t.AssigneeAccountID
}

func (t Task) Assignee() string {
	return t.AssigneeName
}

// Board is the viewer's slice of the kanban board, grouped by column.
type Board struct {
	Todo       []Task
	InProgress []Task
	Done       []Task
}

func (m *Manager) Board(ctx context.Context, organisationID uuid.UUID, viewerAccountID uuid.UUID) (Board, error) {
	var board Board

	directory, err := m.team.LoadDirectory(ctx, organisationID)
	if err != nil {
		return board, err
	}

	dbTasks, err := m.db.ListTasks(ctx, database.ListTasksParams{
		OrganisationID: util.Some(organisationID),
	})
	if err != nil {
		return board, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]Task, 0, len(dbTasks))
	for _, t := range dbTasks {
		tasks = append(tasks, Task{t})
	}

	for _, t := range hierarchy.FilterVisible(directory, viewerAccountID, tasks) {
		switch t.Column {
		case database.TaskColumnInProgress:
			board.InProgress = append(board.InProgress, t)
		case database.TaskColumnDone:
			board.Done = append(board.Done, t)
		default:
			board.Todo = append(board.Todo, t)
		}
	}
	return board, nil
}

type CreateTaskParam struct {
	OrganisationID   uuid.UUID
	Title            string
	Description      string
	Column           database.TaskColumn
	AssigneeMemberID util.Optional[uuid.UUID]
	DueDate          util.Optional[time.Time]
	ActorAccountID   uuid.UUID
}

// CreateTask creates a task assigned to a member of the actor's assignable
// set. Without an explicit assignee the task lands on the actor's own seat.
func (m *Manager) CreateTask(ctx context.Context, params CreateTaskParam) (Task, error) {
	var task Task

	directory, err := m.team.LoadDirectory(ctx, params.OrganisationID)
	if err != nil {
		return task, err
	}

	assignee, err := resolveAssignee(directory, params.ActorAccountID, params.AssigneeMemberID)
	if err != nil {
		return task, err
	}

	column := params.Column
	if column == "" {
		column = database.TaskColumnTodo
	}

	dbTask, err := m.db.CreateTask(ctx, database.CreateTaskParams{
		OrganisationID:     params.OrganisationID,
		Title:              params.Title,
		Description:        params.Description,
		Column:             column,
		AssigneeAccountID:  assignee.AccountID,
		AssigneeName:       assignee.Name,
		DueDate:            params.DueDate,
		CreatedByAccountID: params.ActorAccountID,
	})
	if err != nil {
		return task, fmt.Errorf("failed to create task: %w", err)
	}
	task = Task{dbTask}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeTaskCreate,
		Data: map[string]any{
			"task_id":  task.ID,
			"assignee": assignee.ID,
			"actor":    params.ActorAccountID,
		},
	}); err != nil {
		return task, fmt.Errorf("failed to log audit event: %w", err)
	}

	m.notifyAssignee(ctx, assignee, params.ActorAccountID, "New task assigned", task.Title)

	return task, nil
}

type MoveTaskParam struct {
	OrganisationID uuid.UUID
	TaskID         uuid.UUID
	Column         database.TaskColumn
	ActorAccountID uuid.UUID
}

// MoveTask moves a task to another column. A task outside the actor's visible
// slice is reported as not found, not as forbidden.
func (m *Manager) MoveTask(ctx context.Context, params MoveTaskParam) error {
	if _, err := m.visibleTask(ctx, params.OrganisationID, params.TaskID, params.ActorAccountID); err != nil {
		return err
	}

	if err := m.db.UpdateTaskByID(ctx, params.TaskID, database.UpdateTaskParams{
		Column: util.Some(params.Column),
	}); err != nil {
		return fmt.Errorf("failed to move task %s: %w", params.TaskID, err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeTaskUpdate,
		Data: map[string]any{
			"task_id": params.TaskID,
			"column":  params.Column,
			"actor":   params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

type ReassignTaskParam struct {
	OrganisationID   uuid.UUID
	TaskID           uuid.UUID
	AssigneeMemberID uuid.UUID
	ActorAccountID   uuid.UUID
}

// ReassignTask hands a visible task to another member of the actor's
// assignable set. The stored assignee name moves with the account identity,
// so a later rename of the member never detaches the task.
func (m *Manager) ReassignTask(ctx context.Context, params ReassignTaskParam) error {
	if _, err := m.visibleTask(ctx, params.OrganisationID, params.TaskID, params.ActorAccountID); err != nil {
		return err
	}

	directory, err := m.team.LoadDirectory(ctx, params.OrganisationID)
	if err != nil {
		return err
	}
	assignee, err := resolveAssignee(directory, params.ActorAccountID, util.Some(params.AssigneeMemberID))
	if err != nil {
		return err
	}

	if err := m.db.UpdateTaskByID(ctx, params.TaskID, database.UpdateTaskParams{
		AssigneeAccountID: assignee.AccountID,
		AssigneeName:      util.Some(assignee.Name),
	}); err != nil {
		return fmt.Errorf("failed to reassign task %s: %w", params.TaskID, err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeTaskUpdate,
		Data: map[string]any{
			"task_id":  params.TaskID,
			"assignee": assignee.ID,
			"actor":    params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	m.notifyAssignee(ctx, assignee, params.ActorAccountID, "Task assigned to you", "")

	return nil
}

type UpdateTaskParam struct {
	OrganisationID uuid.UUID
	TaskID         uuid.UUID
	Title          util.Optional[string]
	Description    util.Optional[string]
	DueDate        util.Optional[time.Time]
	ActorAccountID uuid.UUID
}

func (m *Manager) UpdateTask(ctx context.Context, params UpdateTaskParam) error {
	if _, err := m.visibleTask(ctx, params.OrganisationID, params.TaskID, params.ActorAccountID); err != nil {
		return err
	}

	if err := m.db.UpdateTaskByID(ctx, params.TaskID, database.UpdateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
	}); err != nil {
		return fmt.Errorf("failed to update task %s: %w", params.TaskID, err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeTaskUpdate,
		Data: map[string]any{
			"task_id": params.TaskID,
			"actor":   params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

type DeleteTaskParam struct {
	OrganisationID uuid.UUID
	TaskID         uuid.UUID
	ActorAccountID uuid.UUID
}

func (m *Manager) DeleteTask(ctx context.Context, params DeleteTaskParam) error {
	if _, err := m.visibleTask(ctx, params.OrganisationID, params.TaskID, params.ActorAccountID); err != nil {
		return err
	}

	if err := m.db.DeleteTaskByID(ctx, params.TaskID); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", params.TaskID, err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeTaskDelete,
		Data: map[string]any{
			"task_id": params.TaskID,
			"actor":   params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// visibleTask loads one task and checks it through the same filter the board
// uses. An out-of-scope task comes back as ErrTaskNotFound so existence does
// not leak.
func (m *Manager) visibleTask(ctx context.Context, organisationID uuid.UUID, taskID uuid.UUID, viewerAccountID uuid.UUID) (Task, error) {
	var task Task

	dbTask, err := m.db.GetTaskByID(ctx, taskID)
	if err != nil {
		return task, err
	}
	if dbTask.OrganisationID != organisationID {
		return task, database.ErrTaskNotFound
	}
	task = Task{dbTask}

	directory, err := m.team.LoadDirectory(ctx, organisationID)
	if err != nil {
		return task, err
	}
	if len(hierarchy.FilterVisible(directory, viewerAccountID, []Task{task})) == 0 {
		return task, database.ErrTaskNotFound
	}
	return task, nil
}

// resolveAssignee picks the assignee seat out of the actor's assignable set,
// defaulting to the actor's own seat.
func resolveAssignee(directory []hierarchy.Member, actorAccountID uuid.UUID, assigneeMemberID util.Optional[uuid.UUID]) (hierarchy.Member, error) {
	eligible := hierarchy.EligibleAssignees(directory, actorAccountID)
	if len(eligible) == 0 {
		return hierarchy.Member{}, ErrAssigneeNotEligible
	}
	if !assigneeMemberID.IsSet {
		// EligibleAssignees puts the actor's own seat first for non-root
		// viewers; for a root viewer search by account.
		for _, member := range eligible {
			if member.AccountID.IsSet && member.AccountID.Val == actorAccountID {
				return member, nil
			}
		}
		return hierarchy.Member{}, ErrAssigneeNotEligible
	}
	for _, member := range eligible {
		if member.ID == assigneeMemberID.Val {
			return member, nil
		}
	}
	return hierarchy.Member{}, ErrAssigneeNotEligible
}

func (m *Manager) notifyAssignee(ctx context.Context, assignee hierarchy.Member, actorAccountID uuid.UUID, title, message string) {
	if !assignee.AccountID.IsSet || assignee.AccountID.Val == actorAccountID {
		return
	}
	if err := m.notifier.Notify(ctx, notifications.NotifyParam{
		OwnerID: assignee.AccountID.Val,
		Title:   title,
		Message: message,
		Type:    notifications.NotificationTypeInfo,
	}); err != nil {
		m.logger.Warn("Failed to notify assignee", "error", err)
	}
}
