// Package calendar serves the shared team calendar, scoped by the same
// visibility rules as the task board.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/team"
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

// ErrAssigneeNotEligible means the event's assignee is outside the actor's
// assignable set.
var ErrAssigneeNotEligible = errors.New("calendar: assignee is not in your team")

type Manager struct {
	db     *database.Database
	logger *slog.Logger
	team   *team.Manager
}

func NewManager(db *database.Database, logger *slog.Logger, teamManager *team.Manager) Manager {
	return Manager{
		db:     db,
		logger: logger,
		team:   teamManager,
	}
}

// Event wraps the stored record with the assignee accessors the visibility
// filter matches on.
type Event struct {
	database.CalendarEvent
}

func (e Event) AssigneeAccount() util.Optional[uuid.UUID] {
	return e.AssigneeAccountID
}

func (e Event) Assignee() string {
	return e.AssigneeName
}

type ListEventsParam struct {
	OrganisationID  uuid.UUID
	From            util.Optional[time.Time]
	Until           util.Optional[time.Time]
	ViewerAccountID uuid.UUID
}

// Events returns the viewer's slice of the calendar for the given window.
func (m *Manager) Events(ctx context.Context, params ListEventsParam) ([]Event, error) {
	directory, err := m.team.LoadDirectory(ctx, params.OrganisationID)
	if err != nil {
		return nil, err
	}

	dbEvents, err := m.db.ListCalendarEvents(ctx, database.ListCalendarEventsParams{
		OrganisationID: util.Some(params.OrganisationID),
		StartTimestamp: params.From,
		EndTimestamp:   params.Until,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(dbEvents))
	for _, e := range dbEvents {
		events = append(events, Event{e})
	}
	return hierarchy.FilterVisible(directory, params.ViewerAccountID, events), nil
}

type CreateEventParam struct {
	OrganisationID   uuid.UUID
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	AllDay           bool
	Location         string
	AssigneeMemberID util.Optional[uuid.UUID]
	ActorAccountID   uuid.UUID
}

// CreateEvent schedules an event on a member of the actor's assignable set,
// defaulting to the actor's own seat.
func (m *Manager) CreateEvent(ctx context.Context, params CreateEventParam) (Event, error) {
	var event Event

	directory, err := m.team.LoadDirectory(ctx, params.OrganisationID)
	if err != nil {
		return event, err
	}

	assignee, ok := pickAssignee(directory, params.ActorAccountID, params.AssigneeMemberID)
	if !ok {
		return event, ErrAssigneeNotEligible
	}

	dbEvent, err := m.db.CreateCalendarEvent(ctx, database.CreateCalendarEventParams{
		OrganisationID:    params.OrganisationID,
		Title:             params.Title,
		Description:       params.Description,
		StartTime:         params.StartTime,
		EndTime:           params.EndTime,
		AllDay:            params.AllDay,
		Location:          params.Location,
		Status:            database.CalendarEventStatusConfirmed,
		AssigneeAccountID: assignee.AccountID,
		AssigneeName:      assignee.Name,
	})
	if err != nil {
		return event, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return Event{dbEvent}, nil
}

type DeleteEventParam struct {
	OrganisationID uuid.UUID
	EventID        uuid.UUID
	ActorAccountID uuid.UUID
}

// DeleteEvent removes a visible event. Out-of-scope events are reported as
// not found.
func (m *Manager) DeleteEvent(ctx context.Context, params DeleteEventParam) error {
	events, err := m.Events(ctx, ListEventsParam{
		OrganisationID:  params.OrganisationID,
		ViewerAccountID: params.ActorAccountID,
	})
	if err != nil {
		return err
	}

	for _, event := range events {
		if event.ID == params.EventID {
			if err := m.db.DeleteCalendarEventByID(ctx, params.EventID); err != nil {
				return fmt.Errorf("failed to delete calendar event %s: %w", params.EventID, err)
			}
			return nil
		}
	}
	return database.ErrCalendarEventNotFound
}

func pickAssignee(directory []hierarchy.Member, actorAccountID uuid.UUID, assigneeMemberID util.Optional[uuid.UUID]) (hierarchy.Member, bool) {
	eligible := hierarchy.EligibleAssignees(directory, actorAccountID)
	for _, member := range eligible {
		if assigneeMemberID.IsSet {
			if member.ID == assigneeMemberID.Val {
				return member, true
			}
			continue
		}
		if member.AccountID.IsSet && member.AccountID.Val == actorAccountID {
			return member, true
		}
	}
	return hierarchy.Member{}, false
}
