package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"eventboard/internal/domain"
)

type fakeCategoryRepo struct {
	cats map[string]*domain.Category
}

func (f *fakeCategoryRepo) Create(ctx context.Context, cat *domain.Category) error { return nil }

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if c, ok := f.cats[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) List(ctx context.Context, from, size int) ([]*domain.Category, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, cat *domain.Category) error { return nil }
func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error            { return nil }

type fakeStatsClient struct {
	hits  []string
	stats []domain.ViewStats
	err   error
}

func (f *fakeStatsClient) Hit(ctx context.Context, app, uri, ip string) error {
	if f.err != nil {
		return f.err
	}
	f.hits = append(f.hits, uri)
	return nil
}

func (f *fakeStatsClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func newEventServiceForTest(evRepo *fakeEventRepo, stats domain.StatsClient, views domain.ViewCounter) domain.EventService {
	users := &fakeUserRepo{users: map[string]*domain.User{"u1": {ID: "u1"}}}
	cats := &fakeCategoryRepo{cats: map[string]*domain.Category{"c1": {ID: "c1", Name: "concerts"}}}
	return NewEventService(evRepo, cats, users, stats, views, slog.Default())
}

func validNewEvent() *domain.Event {
	return &domain.Event{
		Title:             "Summer rooftop concert",
		Annotation:        "An open air concert with local indie bands.",
		Description:       "Three local bands play from sunset, drinks included.",
		CategoryID:        "c1",
		EventDate:         time.Now().Add(48 * time.Hour),
		ParticipantLimit:  100,
		RequestModeration: true,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Run("valid event starts pending", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{}}
		svc := newEventServiceForTest(evRepo, nil, nil)

		created, err := svc.CreateEvent(context.Background(), "u1", validNewEvent())
		if err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
		if created.State != domain.EventStatePending {
			t.Errorf("state = %s, want PENDING", created.State)
		}
		if created.InitiatorID != "u1" {
			t.Errorf("initiator = %s, want u1", created.InitiatorID)
		}
		if created.ConfirmedRequests != 0 || created.PublishedOn != nil {
			t.Error("new event must start with zero confirmations and no publication time")
		}
	})

	t.Run("unknown initiator", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		if _, err := svc.CreateEvent(context.Background(), "ghost", validNewEvent()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		ev := validNewEvent()
		ev.CategoryID = "missing"
		if _, err := svc.CreateEvent(context.Background(), "u1", ev); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("date too soon", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		ev := validNewEvent()
		ev.EventDate = time.Now().Add(time.Hour)
		if _, err := svc.CreateEvent(context.Background(), "u1", ev); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})
}

func TestEventService_UpdateByInitiator(t *testing.T) {
	newTitle := "Renamed concert"

	pendingEvent := func() *domain.Event {
		ev := validNewEvent()
		ev.ID = "e1"
		ev.InitiatorID = "u1"
		ev.State = domain.EventStatePending
		return ev
	}

	t.Run("published event cannot be edited", func(t *testing.T) {
		ev := pendingEvent()
		ev.State = domain.EventStatePublished
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": ev}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		_, err := svc.UpdateByInitiator(context.Background(), "u1", "e1", &domain.EventUpdate{Title: &newTitle})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("foreign event reads as missing", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		_, err := svc.UpdateByInitiator(context.Background(), "intruder", "e1", &domain.EventUpdate{Title: &newTitle})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("date too soon", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		soon := time.Now().Add(30 * time.Minute)
		_, err := svc.UpdateByInitiator(context.Background(), "u1", "e1", &domain.EventUpdate{EventDate: &soon})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("cancel review then resubmit", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)

		ev, err := svc.UpdateByInitiator(context.Background(), "u1", "e1",
			&domain.EventUpdate{StateAction: domain.StateActionCancelReview})
		if err != nil {
			t.Fatalf("cancel review error = %v", err)
		}
		if ev.State != domain.EventStateCanceled {
			t.Fatalf("state = %s, want CANCELED", ev.State)
		}

		ev, err = svc.UpdateByInitiator(context.Background(), "u1", "e1",
			&domain.EventUpdate{Title: &newTitle, StateAction: domain.StateActionSendToReview})
		if err != nil {
			t.Fatalf("send to review error = %v", err)
		}
		if ev.State != domain.EventStatePending {
			t.Fatalf("state = %s, want PENDING", ev.State)
		}
		if ev.Title != newTitle {
			t.Fatalf("title = %q, want %q", ev.Title, newTitle)
		}
	})

	t.Run("negative participant limit rejected", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		neg := -1
		_, err := svc.UpdateByInitiator(context.Background(), "u1", "e1", &domain.EventUpdate{ParticipantLimit: &neg})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})
}

func TestEventService_UpdateByAdmin(t *testing.T) {
	pendingEvent := func() *domain.Event {
		ev := validNewEvent()
		ev.ID = "e1"
		ev.InitiatorID = "u1"
		ev.State = domain.EventStatePending
		return ev
	}

	t.Run("publish pending event", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		ev, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionPublishEvent})
		if err != nil {
			t.Fatalf("publish error = %v", err)
		}
		if ev.State != domain.EventStatePublished {
			t.Fatalf("state = %s, want PUBLISHED", ev.State)
		}
		if ev.PublishedOn == nil {
			t.Fatal("published event has no publication time")
		}
	})

	t.Run("publish requires pending state", func(t *testing.T) {
		ev := pendingEvent()
		ev.State = domain.EventStateCanceled
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": ev}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		_, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionPublishEvent})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("publish twice conflicts", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		if _, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionPublishEvent}); err != nil {
			t.Fatalf("first publish error = %v", err)
		}
		_, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionPublishEvent})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("reject published event conflicts", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		if _, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionPublishEvent}); err != nil {
			t.Fatalf("publish error = %v", err)
		}
		_, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionRejectEvent})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("reject pending event", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		ev, err := svc.UpdateByAdmin(context.Background(), "e1",
			&domain.EventUpdate{StateAction: domain.StateActionRejectEvent})
		if err != nil {
			t.Fatalf("reject error = %v", err)
		}
		if ev.State != domain.EventStateCanceled {
			t.Fatalf("state = %s, want CANCELED", ev.State)
		}
	})

	t.Run("date before publication gap conflicts", func(t *testing.T) {
		ev := pendingEvent()
		published := time.Now()
		ev.State = domain.EventStatePublished
		ev.PublishedOn = &published
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": ev}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		tooClose := published.Add(30 * time.Minute)
		_, err := svc.UpdateByAdmin(context.Background(), "e1", &domain.EventUpdate{EventDate: &tooClose})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("past date rejected", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": pendingEvent()}}
		svc := newEventServiceForTest(evRepo, nil, nil)
		past := time.Now().Add(-time.Hour)
		_, err := svc.UpdateByAdmin(context.Background(), "e1", &domain.EventUpdate{EventDate: &past})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})
}

func TestEventService_GetPublic(t *testing.T) {
	published := time.Now()
	events := map[string]*domain.Event{
		"e1": {
			ID: "e1", InitiatorID: "u1",
			State:       domain.EventStatePublished,
			PublishedOn: &published,
			EventDate:   time.Now().Add(24 * time.Hour),
		},
		"e2": {
			ID: "e2", InitiatorID: "u1",
			State:     domain.EventStatePending,
			EventDate: time.Now().Add(24 * time.Hour),
		},
	}

	t.Run("pending event is invisible", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: events}
		svc := newEventServiceForTest(evRepo, nil, NewViewCounter())
		if _, err := svc.GetPublic(context.Background(), "e2", "10.0.0.1", "/events/e2"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("view counter deduplicates by ip", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: events}
		svc := newEventServiceForTest(evRepo, nil, NewViewCounter())

		for range 3 {
			if _, err := svc.GetPublic(context.Background(), "e1", "10.0.0.1", "/events/e1"); err != nil {
				t.Fatalf("GetPublic() error = %v", err)
			}
		}
		ev, err := svc.GetPublic(context.Background(), "e1", "10.0.0.2", "/events/e1")
		if err != nil {
			t.Fatalf("GetPublic() error = %v", err)
		}
		if ev.Views != 2 {
			t.Fatalf("views = %d, want 2 unique ips", ev.Views)
		}
	})

	t.Run("stats service wins over local counter", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: events}
		stats := &fakeStatsClient{stats: []domain.ViewStats{{App: "eventboard", URI: "/events/e1", Hits: 42}}}
		svc := newEventServiceForTest(evRepo, stats, NewViewCounter())
		ev, err := svc.GetPublic(context.Background(), "e1", "10.0.0.1", "/events/e1")
		if err != nil {
			t.Fatalf("GetPublic() error = %v", err)
		}
		if ev.Views != 42 {
			t.Fatalf("views = %d, want 42", ev.Views)
		}
		if len(stats.hits) != 1 {
			t.Fatalf("recorded %d hits, want 1", len(stats.hits))
		}
	})

	t.Run("stats failure falls back to local counter", func(t *testing.T) {
		evRepo := &fakeEventRepo{events: events}
		stats := &fakeStatsClient{err: errors.New("stats down")}
		svc := newEventServiceForTest(evRepo, stats, NewViewCounter())
		ev, err := svc.GetPublic(context.Background(), "e1", "10.0.0.1", "/events/e1")
		if err != nil {
			t.Fatalf("GetPublic() error = %v", err)
		}
		if ev.Views != 1 {
			t.Fatalf("views = %d, want 1 from fallback counter", ev.Views)
		}
	})
}

func TestEventService_SearchPublic(t *testing.T) {
	published := time.Now()
	evRepo := &fakeEventRepo{events: map[string]*domain.Event{
		"e1": {
			ID: "e1", State: domain.EventStatePublished,
			PublishedOn: &published, EventDate: time.Now().Add(24 * time.Hour),
		},
		"e2": {ID: "e2", State: domain.EventStatePending, EventDate: time.Now().Add(24 * time.Hour)},
		"e3": {
			ID: "e3", State: domain.EventStatePublished,
			PublishedOn: &published, EventDate: time.Now().Add(-24 * time.Hour),
		},
	}}
	svc := newEventServiceForTest(evRepo, nil, NewViewCounter())

	t.Run("inverted range rejected", func(t *testing.T) {
		start := time.Now()
		end := start.Add(-time.Hour)
		_, err := svc.SearchPublic(context.Background(),
			domain.EventSearchFilter{RangeStart: &start, RangeEnd: &end}, "10.0.0.1", "/events")
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("defaults to upcoming published events", func(t *testing.T) {
		events, err := svc.SearchPublic(context.Background(), domain.EventSearchFilter{}, "10.0.0.1", "/events")
		if err != nil {
			t.Fatalf("SearchPublic() error = %v", err)
		}
		if len(events) != 1 || events[0].ID != "e1" {
			t.Fatalf("got %d events, want only the upcoming published one", len(events))
		}
	})
}
