package domain

import (
	"context"
	"time"
)

// EventState is the publication state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// State actions accepted on event updates. Initiators may send an event to
// review or cancel it; admins publish or reject.
const (
	StateActionSendToReview = "SEND_TO_REVIEW"
	StateActionCancelReview = "CANCEL_REVIEW"
	StateActionPublishEvent = "PUBLISH_EVENT"
	StateActionRejectEvent  = "REJECT_EVENT"
)

// Event represents a platform event with a participant capacity.
// ParticipantLimit of 0 means unlimited; ConfirmedRequests must never exceed
// a nonzero limit.
// swagger:model Event
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"category"`
	InitiatorID       string     `json:"initiator"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	Lat               float64    `json:"lat"`
	Lon               float64    `json:"lon"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	RequestModeration bool       `json:"request_moderation"`
	State             EventState `json:"state"`
	Views             int64      `json:"views"`
}

// AcceptingRequests reports whether the event may receive participation
// requests. Only published events accept them.
func (e *Event) AcceptingRequests() bool {
	return e.State == EventStatePublished
}

// CapacityRemaining returns how many confirmed slots are left. It returns -1
// when the event has no participant limit.
func (e *Event) CapacityRemaining() int {
	if e.ParticipantLimit == 0 {
		return -1
	}
	return e.ParticipantLimit - e.ConfirmedRequests
}

// EventUpdate carries the optional fields of an initiator or admin event
// update. Nil fields are left unchanged.
type EventUpdate struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *string
	EventDate         *time.Time
	Lat               *float64
	Lon               *float64
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	StateAction       string
}

// EventSearchFilter narrows admin and public event listings. Zero values mean
// "no filter"; From and Size page the result.
type EventSearchFilter struct {
	Text          string
	InitiatorIDs  []string
	States        []EventState
	CategoryIDs   []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	SortByDate    bool
	From          int
	Size          int
}

// EventRepository defines storage operations for events.
//
// GetByIDForUpdate must lock the event row for the remainder of the enclosing
// transaction. AdjustConfirmedCount is the single mutation point of the
// confirmed counter; it must refuse deltas that overshoot a nonzero
// participant limit or drive the counter negative, returning ErrConflict.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID string) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*Event, error)
	Search(ctx context.Context, filter EventSearchFilter) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	AdjustConfirmedCount(ctx context.Context, eventID string, delta int) error
}

// EventService defines the event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, initiatorID string, event *Event) (*Event, error)
	GetByInitiator(ctx context.Context, initiatorID, eventID string) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*Event, error)
	UpdateByInitiator(ctx context.Context, initiatorID, eventID string, upd *EventUpdate) (*Event, error)
	UpdateByAdmin(ctx context.Context, eventID string, upd *EventUpdate) (*Event, error)
	SearchByAdmin(ctx context.Context, filter EventSearchFilter) ([]*Event, error)
	SearchPublic(ctx context.Context, filter EventSearchFilter, clientIP, uri string) ([]*Event, error)
	GetPublic(ctx context.Context, eventID, clientIP, uri string) (*Event, error)
}
