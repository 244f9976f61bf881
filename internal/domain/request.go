package domain

import (
	"context"
	"time"
)

// RequestStatus is the lifecycle status of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest represents a user's request to participate in an event.
// The (event, requester) pair is unique: any prior request for the pair,
// whatever its status, blocks a new one.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event"`
	RequesterID string        `json:"requester"`
	Created     time.Time     `json:"created"`
	Status      RequestStatus `json:"status"`
}

// NewParticipationRequest returns a pending request for the given pair. ID is
// set by the repository on create.
func NewParticipationRequest(eventID, requesterID string, created time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Created:     created,
		Status:      RequestStatusPending,
	}
}

// RequestStatusUpdate is the batch transition input: the listed pending
// requests move to Status (CONFIRMED or REJECTED), in list order.
type RequestStatusUpdate struct {
	RequestIDs []string
	Status     RequestStatus
}

// RequestStatusResult partitions a batch by final status, preserving the
// input order within each slice.
// swagger:model RequestStatusResult
type RequestStatusResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmedRequests"`
	RejectedRequests  []*ParticipationRequest `json:"rejectedRequests"`
}

// RequestRepository defines storage operations for participation requests.
type RequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByIDAndRequester(ctx context.Context, id, requesterID string) (*ParticipationRequest, error)
	ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (bool, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID string) ([]*ParticipationRequest, error)
	ListByIDs(ctx context.Context, ids []string) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, id string, status RequestStatus) error
	UpdateStatuses(ctx context.Context, ids []string, status RequestStatus) error
}

// RequestService defines the admission control operations: request creation
// against event capacity, cancellation, and the owner's batch decision.
type RequestService interface {
	CreateRequest(ctx context.Context, requesterID, eventID string) (*ParticipationRequest, error)
	CancelRequest(ctx context.Context, requesterID, requestID string) (*ParticipationRequest, error)
	ListOwnRequests(ctx context.Context, requesterID string) ([]*ParticipationRequest, error)
	ListEventRequests(ctx context.Context, initiatorID, eventID string) ([]*ParticipationRequest, error)
	UpdateRequestStatus(ctx context.Context, initiatorID, eventID string, upd *RequestStatusUpdate) (*RequestStatusResult, error)
}
