package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderBy int

const (
	OrderByASC OrderBy = iota
	OrderByDESC
)

type Database struct {
	Pool *pgxpool.Pool
}

func NewDatabase() Database {
	return Database{
		Pool: nil,
	}
}

func (db *Database) Connect(ctx context.Context, connString string) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("unable to parse database configuration: %w", err)
	}

	db.Pool, err = pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return fmt.Errorf("unable to create database pool: %w", err)
	}

	return nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrOrganisationNotFound  = errors.New("organisation not found")
	ErrMemberNotFound        = errors.New("member not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrCalendarEventNotFound = errors.New("calendar event not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrAuditLogEventNotFound = errors.New("audit log event not found")
)

type Account struct {
	ID              uuid.UUID
	Name            string
	Email           string
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       util.Optional[time.Time]
}

type Organisation struct {
	ID                   uuid.UUID
	Name                 string
	OwnerAccountID       uuid.UUID
	StripeCustomerID     string
	StripeSubscriptionID string
	StripeProductPriceID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Member struct {
	ID             uuid.UUID
	OrganisationID uuid.UUID
	AccountID      util.Optional[uuid.UUID]
	ManagerID      util.Optional[uuid.UUID]
	Name           string
	Email          string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type TaskColumn string

const (
	TaskColumnTodo       TaskColumn = "todo"
	TaskColumnInProgress TaskColumn = "in_progress"
	TaskColumnDone       TaskColumn = "done"
)

type Task struct {
	ID                 uuid.UUID
	OrganisationID     uuid.UUID
	Title              string
	Description        string
	Column             TaskColumn
	AssigneeAccountID  util.Optional[uuid.UUID]
	AssigneeName       string
	DueDate            util.Optional[time.Time]
	CreatedByAccountID uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CalendarEventStatus string

const (
	CalendarEventStatusTentative CalendarEventStatus = "tentative"
	CalendarEventStatusConfirmed CalendarEventStatus = "confirmed"
	CalendarEventStatusCancelled CalendarEventStatus = "cancelled"
)

type CalendarEvent struct {
	ID                uuid.UUID
	OrganisationID    uuid.UUID
	Title             string
	Description       string
	StartTime         time.Time
	EndTime           time.Time
	AllDay            bool
	Location          string
	Status            CalendarEventStatus
	AssigneeAccountID util.Optional[uuid.UUID]
	AssigneeName      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Notification struct {
	ID             uuid.UUID
	OwnerAccountID uuid.UUID
	Title          string
	Message        string
	Type           string
	IsRead         bool
	ActionURL      string
	CreatedAt      time.Time
}

type AuditLogEvent struct {
	ID                  uuid.UUID
	OwnerOrganisationID uuid.UUID
	EventType           string
	EventData           json.RawMessage
	CreatedAt           time.Time
}

//
// Accounts
//

func (db *Database) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	var account Account
	err := db.Pool.QueryRow(ctx, `SELECT id, name, email, is_email_verified, created_at, updated_at, deleted_at FROM tbl_account WHERE id = $1`, id).Scan(
		&account.ID, &account.Name, &account.Email, &account.IsEmailVerified, &account.CreatedAt, &account.UpdatedAt, &account.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrAccountNotFound
		}
		return account, fmt.Errorf("database: failed to scan account: %w", err)
	}
	return account, nil
}

type CreateAccountParams struct {
	Name            string
	Email           string
	IsEmailVerified bool
}

func (db *Database) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	account := Account{
		ID:              uuid.New(),
		Name:            params.Name,
		Email:           params.Email,
		IsEmailVerified: params.IsEmailVerified,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
		DeletedAt:       util.None[time.Time](),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_account (id, name, email, is_email_verified, created_at, updated_at, deleted_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.Name, account.Email, account.IsEmailVerified, account.CreatedAt, account.UpdatedAt, account.DeletedAt); err != nil {
		return account, fmt.Errorf("database: failed to insert account (email=%s): %w", account.Email, err)
	}
	return account, nil
}

//
// Organisations
//

func (db *Database) GetOrganisationByID(ctx context.Context, id uuid.UUID) (Organisation, error) {
	return db.GetOrganisation(ctx, GetOrganisationParams{ID: util.Some(id)})
}

func (db *Database) GetOrganisationByStripeCustomerID(ctx context.Context, customerID string) (Organisation, error) {
	return db.GetOrganisation(ctx, GetOrganisationParams{StripeCustomerID: util.Some(customerID)})
}

func (db *Database) GetOrganisationByStripeSubscriptionID(ctx context.Context, subscriptionID string) (Organisation, error) {
	return db.GetOrganisation(ctx, GetOrganisationParams{StripeSubscriptionID: util.Some(subscriptionID)})
}

type GetOrganisationParams struct {
	ID                   util.Optional[uuid.UUID]
	StripeCustomerID     util.Optional[string]
	StripeSubscriptionID util.Optional[string]
}

func (db *Database) GetOrganisation(ctx context.Context, params GetOrganisationParams) (Organisation, error) {
	var org Organisation

	var query strings.Builder
	query.WriteString(`SELECT id, name, owner_account_id, stripe_customer_id, stripe_subscription_id, stripe_product_price_id, created_at, updated_at FROM tbl_organisation WHERE 1=1`)
	var args []any
	argNum := 1

	if params.ID.IsSet {
		query.WriteString(fmt.Sprintf(" AND id = $%d", argNum))
		args = append(args, params.ID.Val)
		argNum++
	}
	if params.StripeCustomerID.IsSet {
		query.WriteString(fmt.Sprintf(" AND stripe_customer_id = $%d", argNum))
		args = append(args, params.StripeCustomerID.Val)
		argNum++
	}
	if params.StripeSubscriptionID.IsSet {
		query.WriteString(fmt.Sprintf(" AND stripe_subscription_id = $%d", argNum))
		args = append(args, params.StripeSubscriptionID.Val)
		argNum++
	}

	err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(
		&org.ID, &org.Name, &org.OwnerAccountID, &org.StripeCustomerID, &org.StripeSubscriptionID, &org.StripeProductPriceID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return org, ErrOrganisationNotFound
		}
		return org, fmt.Errorf("database: failed to scan organisation: %w", err)
	}
	return org, nil
}

type ListOrganisationsParams struct {
	Limit  int
	Offset int
}

func (db *Database) ListOrganisations(ctx context.Context, params ListOrganisationsParams) ([]Organisation, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, name, owner_account_id, stripe_customer_id, stripe_subscription_id, stripe_product_price_id, created_at, updated_at FROM tbl_organisation ORDER BY created_at ASC LIMIT $1 OFFSET $2`, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list organisations: %w", err)
	}
	defer rows.Close()

	var orgs []Organisation
	for rows.Next() {
		var org Organisation
		if err := rows.Scan(&org.ID, &org.Name, &org.OwnerAccountID, &org.StripeCustomerID, &org.StripeSubscriptionID, &org.StripeProductPriceID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan organisation: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate organisations: %w", err)
	}

	return orgs, nil
}

type CreateOrganisationParams struct {
	Name           string
	OwnerAccountID uuid.UUID
}

func (db *Database) CreateOrganisation(ctx context.Context, params CreateOrganisationParams) (Organisation, error) {
	org := Organisation{
		ID:             uuid.New(),
		Name:           params.Name,
		OwnerAccountID: params.OwnerAccountID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_organisation (id, name, owner_account_id, stripe_customer_id, stripe_subscription_id, stripe_product_price_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		org.ID, org.Name, org.OwnerAccountID, org.StripeCustomerID, org.StripeSubscriptionID, org.StripeProductPriceID, org.CreatedAt, org.UpdatedAt); err != nil {
		return org, fmt.Errorf("database: failed to insert organisation (name=%s): %w", org.Name, err)
	}
	return org, nil
}

type UpdateOrganisationParams struct {
	Name                 util.Optional[string]
	StripeCustomerID     util.Optional[string]
	StripeSubscriptionID util.Optional[string]
	StripeProductPriceID util.Optional[string]
}

func (db *Database) UpdateOrganisationByID(ctx context.Context, id uuid.UUID, params UpdateOrganisationParams) error {
	var query strings.Builder
	query.WriteString("UPDATE tbl_organisation SET ")
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf("name = $%d, ", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.StripeCustomerID.IsSet {
		query.WriteString(fmt.Sprintf("stripe_customer_id = $%d, ", argNum))
		args = append(args, params.StripeCustomerID.Val)
		argNum++
	}
	if params.StripeSubscriptionID.IsSet {
		query.WriteString(fmt.Sprintf("stripe_subscription_id = $%d, ", argNum))
		args = append(args, params.StripeSubscriptionID.Val)
		argNum++
	}
	if params.StripeProductPriceID.IsSet {
		query.WriteString(fmt.Sprintf("stripe_product_price_id = $%d, ", argNum))
		args = append(args, params.StripeProductPriceID.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	if _, err := db.Pool.Exec(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("database: failed to update organisation (id=%s): %w", id, err)
	}
	return nil
}

//
// Members
//

type ListMembersParams struct {
	OrganisationID util.Optional[uuid.UUID]
	AccountID      util.Optional[uuid.UUID]
}

// ListMembers returns members ordered by creation time so the hierarchy
// engine sees a deterministic snapshot.
func (db *Database) ListMembers(ctx context.Context, params ListMembersParams) ([]Member, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, organisation_id, account_id, manager_id, name, email, role, created_at, updated_at FROM tbl_member WHERE 1=1`)
	var args []any
	argNum := 1

	if params.OrganisationID.IsSet {
		query.WriteString(fmt.Sprintf(" AND organisation_id = $%d", argNum))
		args = append(args, params.OrganisationID.Val)
		argNum++
	}
	if params.AccountID.IsSet {
		query.WriteString(fmt.Sprintf(" AND account_id = $%d", argNum))
		args = append(args, params.AccountID.Val)
		argNum++
	}

	query.WriteString(" ORDER BY created_at ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.ID, &member.OrganisationID, &member.AccountID, &member.ManagerID, &member.Name, &member.Email, &member.Role, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate members: %w", err)
	}

	return members, nil
}

type CreateMemberParams struct {
	OrganisationID uuid.UUID
	AccountID      util.Optional[uuid.UUID]
	ManagerID      util.Optional[uuid.UUID]
	Name           string
	Email          string
	Role           string
}

func (db *Database) CreateMember(ctx context.Context, params CreateMemberParams) (Member, error) {
	member := Member{
		ID:             uuid.New(),
		OrganisationID: params.OrganisationID,
		AccountID:      params.AccountID,
		ManagerID:      params.ManagerID,
		Name:           params.Name,
		Email:          params.Email,
		Role:           params.Role,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_member (id, organisation_id, account_id, manager_id, name, email, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		member.ID, member.OrganisationID, member.AccountID, member.ManagerID, member.Name, member.Email, member.Role, member.CreatedAt, member.UpdatedAt); err != nil {
		return member, fmt.Errorf("database: failed to insert member (name=%s): %w", member.Name, err)
	}
	return member, nil
}

type GetMemberParams struct {
	ID             util.Optional[uuid.UUID]
	OrganisationID util.Optional[uuid.UUID]
	AccountID      util.Optional[uuid.UUID]
}

func (db *Database) GetMember(ctx context.Context, params GetMemberParams) (Member, error) {
	var member Member

	var query strings.Builder
	query.WriteString(`SELECT id, organisation_id, account_id, manager_id, name, email, role, created_at, updated_at FROM tbl_member WHERE 1=1`)
	var args []any
	argNum := 1

	if params.ID.IsSet {
		query.WriteString(fmt.Sprintf(" AND id = $%d", argNum))
		args = append(args, params.ID.Val)
		argNum++
	}
	if params.OrganisationID.IsSet {
		query.WriteString(fmt.Sprintf(" AND organisation_id = $%d", argNum))
		args = append(args, params.OrganisationID.Val)
		argNum++
	}
	if params.AccountID.IsSet {
		query.WriteString(fmt.Sprintf(" AND account_id = $%d", argNum))
		args = append(args, params.AccountID.Val)
		argNum++
	}

	err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(
		&member.ID, &member.OrganisationID, &member.AccountID, &member.ManagerID, &member.Name, &member.Email, &member.Role, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, ErrMemberNotFound
		}
		return member, fmt.Errorf("database: failed to scan member: %w", err)
	}
	return member, nil
}

type UpdateMemberParams struct {
	Name      util.Optional[string]
	Email     util.Optional[string]
	Role      util.Optional[string]
	ManagerID util.Optional[uuid.UUID]
}

// UpdateMemberByID applies a single atomic update to one member row.
func (db *Database) UpdateMemberByID(ctx context.Context, id uuid.UUID, params UpdateMemberParams) error {
	var query strings.Builder
	query.WriteString("UPDATE tbl_member SET ")
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf("name = $%d, ", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Email.IsSet {
		query.WriteString(fmt.Sprintf("email = $%d, ", argNum))
		args = append(args, params.Email.Val)
		argNum++
	}
	if params.Role.IsSet {
		query.WriteString(fmt.Sprintf("role = $%d, ", argNum))
		args = append(args, params.Role.Val)
		argNum++
	}
	if params.ManagerID.IsSet {
		query.WriteString(fmt.Sprintf("manager_id = $%d, ", argNum))
		args = append(args, params.ManagerID.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	if _, err := db.Pool.Exec(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("database: failed to update member (id=%s): %w", id, err)
	}
	return nil
}

// RepairMemberManager attaches an orphaned member to the given manager, but
// only when the manager pointer is still unset. Concurrent reconciliations
// issue the same write, which converges harmlessly.
func (db *Database) RepairMemberManager(ctx context.Context, id uuid.UUID, managerID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `UPDATE tbl_member SET manager_id = $1, updated_at = $2 WHERE id = $3 AND manager_id IS NULL`,
		managerID, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("database: failed to repair member manager (id=%s): %w", id, err)
	}
	return nil
}

func (db *Database) DeleteMemberByID(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_member WHERE id = $1`, id); err != nil {
		return fmt.Errorf("database: failed to delete member (id=%s): %w", id, err)
	}
	return nil
}

//
// Tasks
//

type ListTasksParams struct {
	OrganisationID    util.Optional[uuid.UUID]
	Column            util.Optional[TaskColumn]
	AssigneeAccountID util.Optional[uuid.UUID]
}

func (db *Database) ListTasks(ctx context.Context, params ListTasksParams) ([]Task, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, organisation_id, title, description, board_column, assignee_account_id, assignee_name, due_date, created_by_account_id, created_at, updated_at FROM tbl_task WHERE 1=1`)
	var args []any
	argNum := 1

	if params.OrganisationID.IsSet {
		query.WriteString(fmt.Sprintf(" AND organisation_id = $%d", argNum))
		args = append(args, params.OrganisationID.Val)
		argNum++
	}
	if params.Column.IsSet {
		query.WriteString(fmt.Sprintf(" AND board_column = $%d", argNum))
		args = append(args, params.Column.Val)
		argNum++
	}
	if params.AssigneeAccountID.IsSet {
		query.WriteString(fmt.Sprintf(" AND assignee_account_id = $%d", argNum))
		args = append(args, params.AssigneeAccountID.Val)
		argNum++
	}

	query.WriteString(" ORDER BY created_at ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.OrganisationID, &task.Title, &task.Description, &task.Column, &task.AssigneeAccountID, &task.AssigneeName, &task.DueDate, &task.CreatedByAccountID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

type CreateTaskParams struct {
	OrganisationID     uuid.UUID
	Title              string
	Description        string
	Column             TaskColumn
	AssigneeAccountID  util.Optional[uuid.UUID]
	AssigneeName       string
	DueDate            util.Optional[time.Time]
	CreatedByAccountID uuid.UUID
}

func (db *Database) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	task := Task{
		ID:                 uuid.New(),
		OrganisationID:     params.OrganisationID,
		Title:              params.Title,
		Description:        params.Description,
		Column:             params.Column,
		AssigneeAccountID:  params.AssigneeAccountID,
		AssigneeName:       params.AssigneeName,
		DueDate:            params.DueDate,
		CreatedByAccountID: params.CreatedByAccountID,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_task (id, organisation_id, title, description, board_column, assignee_account_id, assignee_name, due_date, created_by_account_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.OrganisationID, task.Title, task.Description, task.Column, task.AssigneeAccountID, task.AssigneeName, task.DueDate, task.CreatedByAccountID, task.CreatedAt, task.UpdatedAt); err != nil {
		return task, fmt.Errorf("database: failed to insert task (title=%s): %w", task.Title, err)
	}
	return task, nil
}

func (db *Database) GetTaskByID(ctx context.Context, id uuid.UUID) (Task, error) {
	var task Task
	err := db.Pool.QueryRow(ctx, `SELECT id, organisation_id, title, description, board_column, assignee_account_id, assignee_name, due_date, created_by_account_id, created_at, updated_at FROM tbl_task WHERE id = $1`, id).Scan(
		&task.ID, &task.OrganisationID, &task.Title, &task.Description, &task.Column, &task.AssigneeAccountID, &task.AssigneeName, &task.DueDate, &task.CreatedByAccountID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task, ErrTaskNotFound
		}
		return task, fmt.Errorf("database: failed to scan task: %w", err)
	}
	return task, nil
}

type UpdateTaskParams struct {
	Title             util.Optional[string]
	Description       util.Optional[string]
	Column            util.Optional[TaskColumn]
	AssigneeAccountID util.Optional[uuid.UUID]
	AssigneeName      util.Optional[string]
	DueDate           util.Optional[time.Time]
}

func (db *Database) UpdateTaskByID(ctx context.Context, id uuid.UUID, params UpdateTaskParams) error {
	var query strings.Builder
	query.WriteString("UPDATE tbl_task SET ")
	var args []any
	argNum := 1

	if params.Title.IsSet {
		query.WriteString(fmt.Sprintf("title = $%d, ", argNum))
		args = append(args, params.Title.Val)
		argNum++
	}
	if params.Description.IsSet {
		query.WriteString(fmt.Sprintf("description = $%d, ", argNum))
		args = append(args, params.Description.Val)
		argNum++
	}
	if params.Column.IsSet {
		query.WriteString(fmt.Sprintf("board_column = $%d, ", argNum))
		args = append(args, params.Column.Val)
		argNum++
	}
	if params.AssigneeAccountID.IsSet {
		query.WriteString(fmt.Sprintf("assignee_account_id = $%d, ", argNum))
		args = append(args, params.AssigneeAccountID.Val)
		argNum++
	}
	if params.AssigneeName.IsSet {
		query.WriteString(fmt.Sprintf("assignee_name = $%d, ", argNum))
		args = append(args, params.AssigneeName.Val)
		argNum++
	}
	if params.DueDate.IsSet {
		query.WriteString(fmt.Sprintf("due_date = $%d, ", argNum))
		args = append(args, params.DueDate.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	if _, err := db.Pool.Exec(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("database: failed to update task (id=%s): %w", id, err)
	}
	return nil
}

func (db *Database) DeleteTaskByID(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_task WHERE id = $1`, id); err != nil {
		return fmt.Errorf("database: failed to delete task (id=%s): %w", id, err)
	}
	return nil
}

//
// Calendar events
//

type ListCalendarEventsParams struct {
	OrganisationID util.Optional[uuid.UUID]
	StartTimestamp util.Optional[time.Time]
	EndTimestamp   util.Optional[time.Time]
}

func (db *Database) ListCalendarEvents(ctx context.Context, params ListCalendarEventsParams) ([]CalendarEvent, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, organisation_id, title, description, start_time, end_time, all_day, location, status, assignee_account_id, assignee_name, created_at, updated_at FROM tbl_calendar_event WHERE 1=1`)
	var args []any
	argNum := 1

	if params.OrganisationID.IsSet {
		query.WriteString(fmt.Sprintf(" AND organisation_id = $%d", argNum))
		args = append(args, params.OrganisationID.Val)
		argNum++
	}
	if params.StartTimestamp.IsSet {
		query.WriteString(fmt.Sprintf(" AND end_time >= $%d", argNum))
		args = append(args, params.StartTimestamp.Val)
		argNum++
	}
	if params.EndTimestamp.IsSet {
		query.WriteString(fmt.Sprintf(" AND start_time <= $%d", argNum))
		args = append(args, params.EndTimestamp.Val)
		argNum++
	}

	query.WriteString(" ORDER BY start_time ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list calendar events: %w", err)
	}
	defer rows.Close()

	var events []CalendarEvent
	for rows.Next() {
		var event CalendarEvent
		if err := rows.Scan(&event.ID, &event.OrganisationID, &event.Title, &event.Description, &event.StartTime, &event.EndTime, &event.AllDay, &event.Location, &event.Status, &event.AssigneeAccountID, &event.AssigneeName, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan calendar event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate calendar events: %w", err)
	}

	return events, nil
}

type CreateCalendarEventParams struct {
	OrganisationID    uuid.UUID
	Title             string
	Description       string
	StartTime         time.Time
	EndTime           time.Time
	AllDay            bool
	Location          string
	Status            CalendarEventStatus
	AssigneeAccountID util.Optional[uuid.UUID]
	AssigneeName      string
}

func (db *Database) CreateCalendarEvent(ctx context.Context, params CreateCalendarEventParams) (CalendarEvent, error) {
	event := CalendarEvent{
		ID:                uuid.New(),
		OrganisationID:    params.OrganisationID,
		Title:             params.Title,
		Description:       params.Description,
		StartTime:         params.StartTime,
		EndTime:           params.EndTime,
		AllDay:            params.AllDay,
		Location:          params.Location,
		Status:            params.Status,
		AssigneeAccountID: params.AssigneeAccountID,
		AssigneeName:      params.AssigneeName,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_calendar_event (id, organisation_id, title, description, start_time, end_time, all_day, location, status, assignee_account_id, assignee_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		event.ID, event.OrganisationID, event.Title, event.Description, event.StartTime, event.EndTime, event.AllDay, event.Location, event.Status, event.AssigneeAccountID, event.AssigneeName, event.CreatedAt, event.UpdatedAt); err != nil {
		return event, fmt.Errorf("database: failed to insert calendar event (title=%s): %w", event.Title, err)
	}
	return event, nil
}

func (db *Database) DeleteCalendarEventByID(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_calendar_event WHERE id = $1`, id); err != nil {
		return fmt.Errorf("database: failed to delete calendar event (id=%s): %w", id, err)
	}
	return nil
}

//
// Notifications
//

type CreateNotificationParams struct {
	OwnerAccountID uuid.UUID
	Title          string
	Message        string
	Type           string
	ActionURL      string
}

func (db *Database) CreateNotification(ctx context.Context, params CreateNotificationParams) (Notification, error) {
	notification := Notification{
		ID:             uuid.New(),
		OwnerAccountID: params.OwnerAccountID,
		Title:          params.Title,
		Message:        params.Message,
		Type:           params.Type,
		IsRead:         false,
		ActionURL:      params.ActionURL,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_notification (id, owner_account_id, title, message, type, is_read, action_url, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		notification.ID, notification.OwnerAccountID, notification.Title, notification.Message, notification.Type, notification.IsRead, notification.ActionURL, notification.CreatedAt); err != nil {
		return notification, fmt.Errorf("database: failed to insert notification: %w", err)
	}
	return notification, nil
}

type ListNotificationsParams struct {
	OwnerAccountID   util.Optional[uuid.UUID]
	Read             util.Optional[bool]
	Limit            util.Optional[uint16]
	OrderByCreatedAt util.Optional[OrderBy]
}

func (db *Database) ListNotifications(ctx context.Context, params ListNotificationsParams) ([]Notification, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, owner_account_id, title, message, type, is_read, action_url, created_at FROM tbl_notification WHERE 1=1`)
	var args []any
	argNum := 1

	if params.OwnerAccountID.IsSet {
		query.WriteString(fmt.Sprintf(" AND owner_account_id = $%d", argNum))
		args = append(args, params.OwnerAccountID.Val)
		argNum++
	}
	if params.Read.IsSet {
		query.WriteString(fmt.Sprintf(" AND is_read = $%d", argNum))
		args = append(args, params.Read.Val)
		argNum++
	}
	if params.OrderByCreatedAt.IsSet {
		if params.OrderByCreatedAt.Val == OrderByDESC {
			query.WriteString(" ORDER BY created_at DESC")
		} else {
			query.WriteString(" ORDER BY created_at ASC")
		}
	}
	if params.Limit.IsSet {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, params.Limit.Val)
		argNum++
	}

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var notification Notification
		if err := rows.Scan(&notification.ID, &notification.OwnerAccountID, &notification.Title, &notification.Message, &notification.Type, &notification.IsRead, &notification.ActionURL, &notification.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

func (db *Database) MarkNotificationAsRead(ctx context.Context, id uuid.UUID, ownerAccountID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE tbl_notification SET is_read = TRUE WHERE id = $1 AND owner_account_id = $2`,
		id, ownerAccountID)
	if err != nil {
		return fmt.Errorf("database: failed to mark notification as read (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

//
// Audit log
//

type CreateAuditLogEventParams struct {
	OwnerID   uuid.UUID
	EventType string
	EventData json.RawMessage
}

func (db *Database) CreateAuditLogEvent(ctx context.Context, params CreateAuditLogEventParams) (AuditLogEvent, error) {
	event := AuditLogEvent{
		ID:                  uuid.New(),
		OwnerOrganisationID: params.OwnerID,
		EventType:           params.EventType,
		EventData:           params.EventData,
		CreatedAt:           time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_audit_log_event (id, owner_organisation_id, event_type, event_data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.OwnerOrganisationID, event.EventType, event.EventData, event.CreatedAt); err != nil {
		return event, fmt.Errorf("database: failed to insert audit log event: %w", err)
	}
	return event, nil
}
