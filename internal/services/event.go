package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
)

// statsAppName identifies this service in hit statistics records.
const statsAppName = "eventboard"

// minLeadTime is the minimum gap between now and an event's date at creation
// or edit; minPublishGap is the minimum gap between publication and the date.
const (
	minLeadTime   = 2 * time.Hour
	minPublishGap = time.Hour
)

type eventService struct {
	eventRepo    domain.EventRepository
	categoryRepo domain.CategoryRepository
	userRepo     domain.UserRepository
	stats        domain.StatsClient
	views        domain.ViewCounter
	logger       *slog.Logger
}

// NewEventService creates the event lifecycle service. stats and views are
// optional; without them public reads simply skip popularity reporting.
func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	stats domain.StatsClient,
	views domain.ViewCounter,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		stats:        stats,
		views:        views,
		logger:       logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, initiatorID string, event *domain.Event) (*domain.Event, error) {
	if _, err := s.userRepo.GetByID(ctx, initiatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if _, err := s.categoryRepo.GetByID(ctx, event.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("category not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if event.EventDate.Before(time.Now().Add(minLeadTime)) {
		return nil, fmt.Errorf("event date must be at least 2 hours from now: %w", domain.ErrValidation)
	}

	event.InitiatorID = initiatorID
	event.CreatedOn = time.Now()
	event.State = domain.EventStatePending
	event.ConfirmedRequests = 0
	event.PublishedOn = nil

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByInitiator(ctx context.Context, initiatorID, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, initiatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateByInitiator(ctx context.Context, initiatorID, eventID string, upd *domain.EventUpdate) (*domain.Event, error) {
	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, initiatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.State != domain.EventStatePending && event.State != domain.EventStateCanceled {
		return nil, fmt.Errorf("only pending or canceled events can be changed: %w", domain.ErrConflict)
	}

	if upd.EventDate != nil && upd.EventDate.Before(time.Now().Add(minLeadTime)) {
		return nil, fmt.Errorf("event date must be at least 2 hours from now: %w", domain.ErrValidation)
	}
	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}

	switch upd.StateAction {
	case domain.StateActionSendToReview:
		event.State = domain.EventStatePending
	case domain.StateActionCancelReview:
		event.State = domain.EventStateCanceled
	case "":
	default:
		return nil, fmt.Errorf("unknown state action %q: %w", upd.StateAction, domain.ErrValidation)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID string, upd *domain.EventUpdate) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if upd.EventDate != nil {
		if event.PublishedOn != nil && upd.EventDate.Before(event.PublishedOn.Add(minPublishGap)) {
			return nil, fmt.Errorf("event date must be at least 1 hour from publication: %w", domain.ErrConflict)
		}
		if upd.EventDate.Before(time.Now()) {
			return nil, fmt.Errorf("event date cannot be in the past: %w", domain.ErrValidation)
		}
	}
	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}

	switch upd.StateAction {
	case domain.StateActionPublishEvent:
		if event.State != domain.EventStatePending {
			return nil, fmt.Errorf("cannot publish event that is not in PENDING state: %w", domain.ErrConflict)
		}
		now := time.Now()
		event.State = domain.EventStatePublished
		event.PublishedOn = &now
	case domain.StateActionRejectEvent:
		if event.State == domain.EventStatePublished {
			return nil, fmt.Errorf("cannot reject already published event: %w", domain.ErrConflict)
		}
		event.State = domain.EventStateCanceled
	case "":
	default:
		return nil, fmt.Errorf("unknown state action %q: %w", upd.StateAction, domain.ErrValidation)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) applyUpdate(ctx context.Context, event *domain.Event, upd *domain.EventUpdate) error {
	if upd.Title != nil {
		event.Title = *upd.Title
	}
	if upd.Annotation != nil {
		event.Annotation = *upd.Annotation
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *upd.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("category not found: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("get category: %w", err)
		}
		event.CategoryID = *upd.CategoryID
	}
	if upd.EventDate != nil {
		event.EventDate = *upd.EventDate
	}
	if upd.Lat != nil {
		event.Lat = *upd.Lat
	}
	if upd.Lon != nil {
		event.Lon = *upd.Lon
	}
	if upd.Paid != nil {
		event.Paid = *upd.Paid
	}
	if upd.ParticipantLimit != nil {
		if *upd.ParticipantLimit < 0 {
			return fmt.Errorf("participant limit must be positive or zero: %w", domain.ErrValidation)
		}
		event.ParticipantLimit = *upd.ParticipantLimit
	}
	if upd.RequestModeration != nil {
		event.RequestModeration = *upd.RequestModeration
	}
	return nil
}

func (s *eventService) SearchByAdmin(ctx context.Context, filter domain.EventSearchFilter) ([]*domain.Event, error) {
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (s *eventService) SearchPublic(ctx context.Context, filter domain.EventSearchFilter, clientIP, uri string) ([]*domain.Event, error) {
	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeEnd.Before(*filter.RangeStart) {
		return nil, fmt.Errorf("rangeEnd cannot be before rangeStart: %w", domain.ErrValidation)
	}

	// Public listings only ever see published events with a future date
	// window by default.
	filter.States = []domain.EventState{domain.EventStatePublished}
	if filter.RangeStart == nil {
		now := time.Now()
		filter.RangeStart = &now
	}

	s.recordHit(ctx, uri, clientIP)

	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	s.attachViews(ctx, events)
	return events, nil
}

func (s *eventService) GetPublic(ctx context.Context, eventID, clientIP, uri string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.State != domain.EventStatePublished {
		return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
	}

	s.recordHit(ctx, uri, clientIP)
	if s.views != nil {
		s.views.Increment(event.ID, clientIP)
	}
	s.attachViews(ctx, []*domain.Event{event})
	return event, nil
}

// recordHit reports the request to the stats service. Popularity reporting is
// best effort and never fails the read.
func (s *eventService) recordHit(ctx context.Context, uri, ip string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Hit(ctx, statsAppName, uri, ip); err != nil {
		s.logger.WarnContext(ctx, "failed to send stats hit", "uri", uri, "err", err)
	}
}

// attachViews fills Views from the stats service, falling back to the
// in-process counter when it is unreachable.
func (s *eventService) attachViews(ctx context.Context, events []*domain.Event) {
	if len(events) == 0 {
		return
	}
	uris := make([]string, len(events))
	byURI := make(map[string]*domain.Event, len(events))
	for i, e := range events {
		uri := "/events/" + e.ID
		uris[i] = uri
		byURI[uri] = e
	}

	if s.stats != nil {
		start := time.Now().AddDate(-1, 0, 0)
		stats, err := s.stats.GetStats(ctx, start, time.Now(), uris, true)
		if err == nil {
			for _, st := range stats {
				if e, ok := byURI[st.URI]; ok {
					e.Views = st.Hits
				}
			}
			return
		}
		s.logger.WarnContext(ctx, "failed to get views from stats service", "err", err)
	}
	if s.views != nil {
		for _, e := range events {
			e.Views = s.views.Views(e.ID)
		}
	}
}
