package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditPartial = "partial"
	AuditFailure = "failure"
)

// LogAuditEvent logs a structured audit event.
//
// Sync runs use action "sync" with resource type "coding_profile"; handle edits use
// action "update_handles" with resource type "user". result is one of AuditSuccess,
// AuditPartial or AuditFailure. details may be nil.
func LogAuditEvent(
	ctx context.Context,
	action, userID, resourceType, resourceID, result string,
	details map[string]any,
) {
	fields := []zap.Field{
		zap.String("audit.action", action),
		zap.String("audit.user_id", userID),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("audit.details", details))
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
