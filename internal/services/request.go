package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventboard/internal/domain"
)

// maxTxRetries bounds how often a serialization conflict is retried before it
// surfaces as a business conflict.
const maxTxRetries = 3

type requestService struct {
	requestRepo domain.RequestRepository
	eventRepo   domain.EventRepository
	userRepo    domain.UserRepository
	tx          domain.Transactor
}

// NewRequestService creates the admission control service. All capacity
// decisions run inside tx with the event row locked.
func NewRequestService(
	requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
) domain.RequestService {
	return &requestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		tx:          tx,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, requesterID, eventID string) (*domain.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var request *domain.ParticipationRequest
	err := s.withRetry(ctx, func(ctx context.Context) error {
		// Lock the event row so the capacity check and the counter
		// increment cannot interleave with another admission decision.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("event not found: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("get event: %w", err)
		}

		if event.InitiatorID == requesterID {
			return fmt.Errorf("initiator cannot request participation in own event: %w", domain.ErrConflict)
		}
		if !event.AcceptingRequests() {
			return fmt.Errorf("cannot participate in unpublished event: %w", domain.ErrConflict)
		}
		if event.ParticipantLimit > 0 && event.CapacityRemaining() <= 0 {
			return fmt.Errorf("participant limit reached: %w", domain.ErrConflict)
		}

		// Any earlier request for the pair blocks a new one, canceled
		// ones included.
		exists, err := s.requestRepo.ExistsByRequesterAndEvent(ctx, requesterID, eventID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return fmt.Errorf("request already exists: %w", domain.ErrConflict)
		}

		req := domain.NewParticipationRequest(eventID, requesterID, time.Now())

		// No moderation or no limit means immediate confirmation, with
		// the counter moved in the same transaction as the insert.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			req.Status = domain.RequestStatusConfirmed
			if err := s.eventRepo.AdjustConfirmedCount(ctx, eventID, 1); err != nil {
				return fmt.Errorf("increment confirmed count: %w", err)
			}
		}

		if err := s.requestRepo.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *requestService) CancelRequest(ctx context.Context, requesterID, requestID string) (*domain.ParticipationRequest, error) {
	var request *domain.ParticipationRequest
	err := s.withRetry(ctx, func(ctx context.Context) error {
		req, err := s.requestRepo.GetByIDAndRequester(ctx, requestID, requesterID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("request not found: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("get request: %w", err)
		}

		// Canceling a confirmed request frees its slot.
		if req.Status == domain.RequestStatusConfirmed {
			if err := s.eventRepo.AdjustConfirmedCount(ctx, req.EventID, -1); err != nil {
				return fmt.Errorf("decrement confirmed count: %w", err)
			}
		}

		if err := s.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusCanceled); err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		req.Status = domain.RequestStatusCanceled
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *requestService) ListOwnRequests(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) ListEventRequests(ctx context.Context, initiatorID, eventID string) ([]*domain.ParticipationRequest, error) {
	if _, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, initiatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event not found or not owned by user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) UpdateRequestStatus(ctx context.Context, initiatorID, eventID string, upd *domain.RequestStatusUpdate) (*domain.RequestStatusResult, error) {
	if upd == nil || len(upd.RequestIDs) == 0 {
		return nil, fmt.Errorf("requestIds cannot be empty: %w", domain.ErrValidation)
	}
	if upd.Status != domain.RequestStatusConfirmed && upd.Status != domain.RequestStatusRejected {
		return nil, fmt.Errorf("status must be CONFIRMED or REJECTED: %w", domain.ErrValidation)
	}

	var result *domain.RequestStatusResult
	err := s.withRetry(ctx, func(ctx context.Context) error {
		// The lock is held for the whole read-partition-write sequence.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("event not found: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("get event: %w", err)
		}
		if event.InitiatorID != initiatorID {
			return fmt.Errorf("event not found or not owned by user: %w", domain.ErrNotFound)
		}

		requests, err := s.requestRepo.ListByIDs(ctx, upd.RequestIDs)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		byID := make(map[string]*domain.ParticipationRequest, len(requests))
		for _, req := range requests {
			byID[req.ID] = req
		}

		// Walk in input order; ids that match nothing are skipped, like
		// a lookup by id set would.
		ordered := make([]*domain.ParticipationRequest, 0, len(upd.RequestIDs))
		for _, id := range upd.RequestIDs {
			if req, ok := byID[id]; ok {
				ordered = append(ordered, req)
			}
		}

		for _, req := range ordered {
			if req.Status != domain.RequestStatusPending {
				return fmt.Errorf("request must have status PENDING: %w", domain.ErrConflict)
			}
		}

		res := &domain.RequestStatusResult{
			ConfirmedRequests: []*domain.ParticipationRequest{},
			RejectedRequests:  []*domain.ParticipationRequest{},
		}

		if upd.Status == domain.RequestStatusRejected {
			ids := make([]string, len(ordered))
			for i, req := range ordered {
				ids[i] = req.ID
				req.Status = domain.RequestStatusRejected
				res.RejectedRequests = append(res.RejectedRequests, req)
			}
			if err := s.requestRepo.UpdateStatuses(ctx, ids, domain.RequestStatusRejected); err != nil {
				return fmt.Errorf("reject requests: %w", err)
			}
			result = res
			return nil
		}

		// Confirm in input order while capacity remains; once the limit
		// is hit the remainder of the batch is rejected, not failed.
		running := event.ConfirmedRequests
		var confirmedIDs, rejectedIDs []string
		for _, req := range ordered {
			if event.ParticipantLimit == 0 || running < event.ParticipantLimit {
				req.Status = domain.RequestStatusConfirmed
				running++
				confirmedIDs = append(confirmedIDs, req.ID)
				res.ConfirmedRequests = append(res.ConfirmedRequests, req)
			} else {
				req.Status = domain.RequestStatusRejected
				rejectedIDs = append(rejectedIDs, req.ID)
				res.RejectedRequests = append(res.RejectedRequests, req)
			}
		}

		if err := s.requestRepo.UpdateStatuses(ctx, confirmedIDs, domain.RequestStatusConfirmed); err != nil {
			return fmt.Errorf("confirm requests: %w", err)
		}
		if err := s.requestRepo.UpdateStatuses(ctx, rejectedIDs, domain.RequestStatusRejected); err != nil {
			return fmt.Errorf("reject requests: %w", err)
		}
		if delta := len(confirmedIDs); delta > 0 {
			if err := s.eventRepo.AdjustConfirmedCount(ctx, eventID, delta); err != nil {
				return fmt.Errorf("adjust confirmed count: %w", err)
			}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withRetry runs fn in a transaction, retrying bounded times when the storage
// engine reports a serialization or deadlock failure.
func (s *requestService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.tx.WithinTransaction(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrTxSerialization) {
			return err
		}
	}
	return fmt.Errorf("too many concurrent updates: %w", domain.ErrConflict)
}
