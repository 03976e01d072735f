package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
)

type fakeAPI struct {
	mu       sync.Mutex
	hits     map[string]int
	tickets  []Ticket
	members  []TeamMember
	notes    []Notification
	failWith int
	// notesFailWith makes notification endpoints answer with this status.
	notesFailWith int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{hits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tickets", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		if api.failWith != 0 {
			writeError(w, api.failWith, "Database is down", "INTERNAL_ERROR")
			return
		}
		writeData(w, http.StatusOK, api.tickets)
	})
	mux.HandleFunc("GET /tickets/count", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		writeData(w, http.StatusOK, countBody{Count: len(api.tickets)})
	})
	mux.HandleFunc("PATCH /tickets/{id}/priority", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		var body struct {
			Priority domain.TicketPriority `json:"priority"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		t := api.tickets[0]
		t.Priority = body.Priority
		writeData(w, http.StatusOK, TicketMutation{Ticket: t, Activity: &Activity{
			ID: "act-1", TicketID: t.ID, Type: domain.ActivityPriorityChanged, Details: "changed", CreatedAt: time.Now(),
		}})
	})
	mux.HandleFunc("POST /tickets/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		t := api.tickets[0]
		t.Status = domain.TicketStatusResolved
		writeData(w, http.StatusOK, TicketMutation{Ticket: t})
	})
	mux.HandleFunc("GET /team", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		writeData(w, http.StatusOK, api.members)
	})
	mux.HandleFunc("DELETE /team/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.count(r)
		if r.PathValue("id") == "self" {
			writeError(w, http.StatusConflict, "You cannot remove yourself", "CONFLICT")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			writeData(w, http.StatusOK, api.notes)
		}
	})
	mux.HandleFunc("GET /notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			unread := 0
			for _, n := range api.notes {
				if !n.IsRead {
					unread++
				}
			}
			writeData(w, http.StatusOK, countBody{Count: unread})
		}
	})
	mux.HandleFunc("PATCH /notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			for _, n := range api.notes {
				if n.ID == r.PathValue("id") {
					n.IsRead = true
					writeData(w, http.StatusOK, n)
					return
				}
			}
			writeError(w, http.StatusNotFound, "notification not found", "NOT_FOUND")
		}
	})
	mux.HandleFunc("PATCH /notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			writeData(w, http.StatusOK, countBody{Count: len(api.notes)})
		}
	})
	mux.HandleFunc("DELETE /notifications/{id}", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("DELETE /notifications", func(w http.ResponseWriter, r *http.Request) {
		if api.countNotes(r, w) {
			writeData(w, http.StatusOK, countBody{Count: len(api.notes)})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, New(srv.URL, WithToken("tok"), WithHTTPClient(srv.Client()))
}

func (a *fakeAPI) count(r *http.Request) {
	a.mu.Lock()
	a.hits[r.Method+" "+r.URL.Path]++
	a.mu.Unlock()
}

// countNotes records the hit and reports false after writing the configured failure.
func (a *fakeAPI) countNotes(r *http.Request, w http.ResponseWriter) bool {
	a.count(r)
	if a.notesFailWith != 0 {
		writeError(w, a.notesFailWith, "Notifications are unavailable", "INTERNAL_ERROR")
		return false
	}
	return true
}

func (a *fakeAPI) hitsFor(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[key]
}

func writeData(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": payload})
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg, "code": code})
}

func TestClientSendsBearerTokenAndDecodesEnvelope(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		writeData(w, http.StatusOK, countBody{Count: 4})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("abc"))
	n, err := c.CountTickets(context.Background(), TicketQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "Bearer abc", auth.Load())
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListTeam(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "Insufficient permissions", ErrorMessage(err, "fallback"))
	assert.Equal(t, "fallback", ErrorMessage(errors.New("dial tcp: refused"), "fallback"))
}

func TestTicketQueryValues(t *testing.T) {
	v := TicketQuery{
		Statuses:   []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusResolved},
		Priorities: []domain.TicketPriority{domain.TicketPriorityHigh},
		Search:     "refund",
		Limit:      20,
	}.values()
	assert.Equal(t, "new,resolved", v.Get("status"))
	assert.Equal(t, "high", v.Get("priority"))
	assert.Equal(t, "refund", v.Get("search"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.Empty(t, v.Get("offset"))
}

func TestTicketStoreFetchesListAndCount(t *testing.T) {
	api, c := newFakeAPI(t)
	api.tickets = []Ticket{{ID: "t1", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityMedium}}

	store := NewTicketStore(c)
	require.NoError(t, store.Fetch(context.Background()))
	assert.Len(t, store.Tickets(), 1)
	assert.Equal(t, 1, store.Total())
	assert.Empty(t, store.Error())
}

func TestTicketStoreRecordsServerError(t *testing.T) {
	api, c := newFakeAPI(t)
	api.failWith = http.StatusInternalServerError

	store := NewTicketStore(c)
	require.Error(t, store.Fetch(context.Background()))
	assert.Equal(t, "Database is down", store.Error())
	assert.Empty(t, store.Tickets())
}

func TestTicketStoreSkipsUnchangedPriority(t *testing.T) {
	api, c := newFakeAPI(t)
	api.tickets = []Ticket{{ID: "t1", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityMedium}}
	store := NewTicketStore(c)
	require.NoError(t, store.Fetch(context.Background()))

	require.NoError(t, store.UpdatePriority(context.Background(), "t1", domain.TicketPriorityMedium))
	assert.Zero(t, api.hitsFor("PATCH /tickets/t1/priority"))

	require.NoError(t, store.UpdatePriority(context.Background(), "t1", domain.TicketPriorityHigh))
	assert.Equal(t, 1, api.hitsFor("PATCH /tickets/t1/priority"))

	got, ok := store.Ticket("t1")
	require.True(t, ok)
	assert.Equal(t, domain.TicketPriorityHigh, got.Priority)
	assert.Len(t, store.Activities("t1"), 1)

	require.NoError(t, store.UpdatePriority(context.Background(), "t1", domain.TicketPriorityHigh))
	assert.Equal(t, 1, api.hitsFor("PATCH /tickets/t1/priority"))
}

func TestTicketStoreLocksClosedTickets(t *testing.T) {
	api, c := newFakeAPI(t)
	api.tickets = []Ticket{{ID: "t1", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityLow}}
	store := NewTicketStore(c)
	require.NoError(t, store.Fetch(context.Background()))

	require.NoError(t, store.Resolve(context.Background(), "t1"))
	assert.Equal(t, 1, api.hitsFor("POST /tickets/t1/resolve"))

	ctx := context.Background()
	assert.ErrorIs(t, store.Resolve(ctx, "t1"), ErrTicketClosed)
	assert.ErrorIs(t, store.Assign(ctx, "t1", "u2"), ErrTicketClosed)
	assert.ErrorIs(t, store.Escalate(ctx, "t1", "angry"), ErrTicketClosed)
	assert.ErrorIs(t, store.AddNote(ctx, "t1", "hello"), ErrTicketClosed)
	assert.Equal(t, 1, api.hitsFor("POST /tickets/t1/resolve"))
}

func TestTicketStorePollsWithSingleTimer(t *testing.T) {
	api, c := newFakeAPI(t)
	store := newTicketStore(c, time.Hour)

	store.StartPolling(context.Background())
	store.StartPolling(context.Background())
	assert.True(t, store.Polling())

	require.Eventually(t, func() bool { return api.hitsFor("GET /tickets/count") == 1 }, time.Second, 5*time.Millisecond)
	store.StopPolling()
	assert.False(t, store.Polling())
	assert.Equal(t, 1, api.hitsFor("GET /tickets"))
}

func TestPollerTicksUntilStopped(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(5*time.Millisecond, func(context.Context) { calls.Add(1) })

	assert.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
	p.Stop()
}

func TestDisplayActivitiesDedupsAndSortsNewestFirst(t *testing.T) {
	actor := "u1"
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	items := []Activity{
		{ID: "a", Type: domain.ActivityCreated, Details: "Ticket created", CreatedAt: base},
		{ID: "b", Type: domain.ActivityNote, ActorID: &actor, Details: "call back", CreatedAt: base.Add(time.Minute)},
		{ID: "c", Type: domain.ActivityNote, ActorID: &actor, Details: "call back", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "d", Type: domain.ActivityNote, Details: "call back", CreatedAt: base.Add(3 * time.Minute)},
	}

	got := DisplayActivities(items)
	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"d", "c", "a"}, ids)
}

func TestTeamStoreAndRefresh(t *testing.T) {
	api, c := newFakeAPI(t)
	api.tickets = []Ticket{{ID: "t1"}}
	api.members = []TeamMember{{ID: "self"}, {ID: "u2"}}

	tickets := NewTicketStore(c)
	team := NewTeamStore(c)
	require.NoError(t, Refresh(context.Background(), tickets, team))
	assert.Len(t, tickets.Tickets(), 1)
	assert.Len(t, team.Members(), 2)

	require.NoError(t, team.Remove(context.Background(), "u2"))
	assert.Len(t, team.Members(), 1)

	require.Error(t, team.Remove(context.Background(), "self"))
	assert.Equal(t, "You cannot remove yourself", team.Error())
	assert.Len(t, team.Members(), 1)
}

func TestNotificationStoreMarksReadAfterSuccess(t *testing.T) {
	api, c := newFakeAPI(t)
	api.notes = []Notification{{ID: "n1"}}

	store := NewNotificationStore(c)
	require.NoError(t, store.Fetch(context.Background()))
	assert.Equal(t, 1, store.UnreadCount())

	require.NoError(t, store.MarkRead(context.Background(), "n1"))
	assert.True(t, store.Notifications()[0].IsRead)
	assert.Equal(t, 0, store.UnreadCount())
}

func TestNotificationStorePollsWithSingleTimer(t *testing.T) {
	api, c := newFakeAPI(t)
	api.notes = []Notification{{ID: "n1"}}
	store := newNotificationStore(c, time.Hour)

	store.StartPolling(context.Background())
	store.StartPolling(context.Background())
	assert.True(t, store.Polling())

	require.Eventually(t, func() bool { return api.hitsFor("GET /notifications/unread-count") == 1 }, time.Second, 5*time.Millisecond)
	store.StopPolling()
	assert.False(t, store.Polling())
	assert.Equal(t, 1, api.hitsFor("GET /notifications"))
	assert.Equal(t, 1, store.UnreadCount())
}

func TestNotificationStoreMutations(t *testing.T) {
	api, c := newFakeAPI(t)
	api.notes = []Notification{{ID: "n1"}, {ID: "n2"}, {ID: "n3", IsRead: true}}
	store := newNotificationStore(c, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx))
	require.Equal(t, 2, store.UnreadCount())

	require.NoError(t, store.Delete(ctx, "n1"))
	assert.Len(t, store.Notifications(), 2)
	assert.Equal(t, 1, store.UnreadCount())

	require.NoError(t, store.MarkAllRead(ctx))
	assert.Equal(t, 0, store.UnreadCount())
	for _, n := range store.Notifications() {
		assert.True(t, n.IsRead, n.ID)
	}

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Notifications())
	assert.Equal(t, 0, store.UnreadCount())
	assert.Empty(t, store.Error())
}

func TestNotificationStoreFailuresKeepCache(t *testing.T) {
	api, c := newFakeAPI(t)
	api.notes = []Notification{{ID: "n1"}, {ID: "n2"}}
	store := newNotificationStore(c, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx))

	api.notesFailWith = http.StatusInternalServerError
	for name, op := range map[string]func() error{
		"read":     func() error { return store.MarkRead(ctx, "n1") },
		"read-all": func() error { return store.MarkAllRead(ctx) },
		"delete":   func() error { return store.Delete(ctx, "n1") },
		"clear":    func() error { return store.Clear(ctx) },
		"fetch":    func() error { return store.Fetch(ctx) },
	} {
		require.Error(t, op(), name)
		assert.Len(t, store.Notifications(), 2, name)
		assert.Equal(t, 2, store.UnreadCount(), name)
		assert.Equal(t, "Notifications are unavailable", store.Error(), name)
		assert.False(t, store.Notifications()[0].IsRead, name)
	}
}

func TestNotificationStoreFallbackErrorOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	store := newNotificationStore(New(srv.URL), time.Hour)

	require.Error(t, store.Fetch(context.Background()))
	assert.Equal(t, "Failed to fetch notifications", store.Error())
}

func TestPollerRestartsAfterParentCancel(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(time.Hour, func(context.Context) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, p.Start(ctx))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, time.Millisecond)

	require.True(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	p.Stop()
	assert.False(t, p.Running())
}
