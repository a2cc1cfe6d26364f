package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKind names a recorded mutation.
type ActivityKind string

const (
	ActivityUserRegistered    ActivityKind = "user.registered"
	ActivityUserUpdated       ActivityKind = "user.updated"
	ActivityUserStatusChanged ActivityKind = "user.status_changed"
	ActivityListingCreated    ActivityKind = "listing.created"
	ActivityListingUpdated    ActivityKind = "listing.updated"
	ActivityListingDeleted    ActivityKind = "listing.deleted"
	ActivityListingExpired    ActivityKind = "listing.expired"
	ActivityOrderPlaced       ActivityKind = "order.placed"
	ActivityOrderCompleted    ActivityKind = "order.completed"
	ActivityOrderCancelled    ActivityKind = "order.cancelled"
)

// Activity is one entry of the append-only activity log. Sequence is assigned
// by the store when the entry is appended and orders entries by commit.
type Activity struct {
	ID          string            `json:"id"`
	Sequence    string            `json:"sequence"`
	Kind        ActivityKind      `json:"kind"`
	ActorID     string            `json:"actor_id,omitempty"`
	SubjectID   string            `json:"subject_id"`
	BusinessIDs []string          `json:"business_ids,omitempty"`
	Message     string            `json:"message"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewActivity stamps an entry with an id.
func NewActivity(kind ActivityKind, actorID, subjectID, message string, at time.Time) Activity {
	return Activity{
		ID:        uuid.NewString(),
		Kind:      kind,
		ActorID:   actorID,
		SubjectID: subjectID,
		Message:   message,
		CreatedAt: at,
	}
}

// Touches reports whether the entry concerns businessID.
func (a Activity) Touches(businessID string) bool {
	if a.ActorID == businessID {
		return true
	}
	for _, id := range a.BusinessIDs {
		if id == businessID {
			return true
		}
	}
	return false
}
