package activity

import (
	"strings"
	"time"
)

// MutationEventInput describes the common fields for entity mutation events.
type MutationEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	PostID     string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	OldValue   any
	NewValue   any
	OccurredAt time.Time
}

// BuildMutationEvent constructs a normalized activity event for a confirmed
// entity mutation. PostID and old/new values land in metadata so sinks can
// render diffs without re-fetching.
func BuildMutationEvent(verb string, input MutationEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.PostID != "" {
		metadata = ensureMetadata(metadata)
		metadata["post_id"] = input.PostID
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.PostID)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.ObjectType)
	}

	return Event{
		Verb:       strings.TrimSpace(verb),
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: strings.TrimSpace(input.ObjectType),
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
