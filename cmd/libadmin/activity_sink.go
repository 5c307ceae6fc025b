package main

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-users/pkg/types"
)

// logActivitySink writes go-users activity records to the structured log.
type logActivitySink struct {
	logger *slog.Logger
}

func (s logActivitySink) Log(ctx context.Context, record types.ActivityRecord) error {
	s.logger.InfoContext(ctx, "activity",
		"verb", record.Verb,
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"actor_id", record.ActorID.String(),
		"occurred_at", record.OccurredAt,
	)
	return nil
}
