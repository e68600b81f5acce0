package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"crewdesk/internal/database"

	"github.com/google/uuid"
)

type AuditLogEventType string

const (
	AuditLogEventTypeMemberInvite          AuditLogEventType = "member.invite"
	AuditLogEventTypeMemberUpdate          AuditLogEventType = "member.update"
	AuditLogEventTypeMemberManagerReassign AuditLogEventType = "member.manager_reassign"
	AuditLogEventTypeMemberRemove          AuditLogEventType = "member.remove"
	AuditLogEventTypeMemberOrphanRepair    AuditLogEventType = "member.orphan_repair"
	AuditLogEventTypeMemberOwnerDeduped    AuditLogEventType = "member.owner_deduped"
	AuditLogEventTypeTaskCreate            AuditLogEventType = "task.create"
	AuditLogEventTypeTaskUpdate            AuditLogEventType = "task.update"
	AuditLogEventTypeTaskDelete            AuditLogEventType = "task.delete"
	AuditLogEventTypeSubscriptionChanged   AuditLogEventType = "subscription.changed"
)

type Auditor struct {
	logger *slog.Logger
	db     *database.Database
}

func NewAuditor(logger *slog.Logger, db *database.Database) Auditor {
	return Auditor{logger: logger, db: db}
}

type LogEventParam struct {
	OwnerID uuid.UUID
	Type    AuditLogEventType
	Data    map[string]any
}

func (a *Auditor) LogEvent(ctx context.Context, params LogEventParam) error {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log event data: %w", err)
	}

	if _, err = a.db.CreateAuditLogEvent(ctx, database.CreateAuditLogEventParams{
		OwnerID:   params.OwnerID,
		EventType: string(params.Type),
		EventData: data,
	}); err != nil {
		return fmt.Errorf("failed to create audit log event: %w", err)
	}
	return nil
}
