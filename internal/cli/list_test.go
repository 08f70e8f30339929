package cli

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dataportal/internal/sections"
)

// eventsBackend serves the ICSR events list and records each query.
type eventsBackend struct {
	mu      sync.Mutex
	queries []string
	status  int
	body    interface{}
}

func (b *eventsBackend) handler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.queries = append(b.queries, r.URL.RawQuery)
	b.mu.Unlock()

	if b.status != 0 {
		writeJSONResponse(w, b.status, b.body)
		return
	}
	page := r.URL.Query().Get("page")
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{
			{"id": 1, "event_name": "Industry Expo " + page, "event_type": "Workshop", "department": "CSE", "participants": 40},
			{"id": 2, "event_name": "Hackathon", "event_type": "Workshop", "department": "CSE", "participants": 1200},
			{"id": 3, "event_name": "Guest Talk", "event_type": "Seminar", "department": "CSE", "participants": 90},
		},
		"pagination": map[string]interface{}{"page": 1, "per_page": 3, "total": 9, "total_pages": 3},
	})
}

func (b *eventsBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func TestList_RendersFilteredPage(t *testing.T) {
	backend := &eventsBackend{}
	env, out := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	cmd := &ListCommand{
		Args:   sectionArg{Section: "icsr"},
		Filter: []string{"department=CSE", "event_type=All"},
		Search: "expo",
		Page:   1,
		env:    env,
	}
	require.NoError(t, cmd.Execute(nil))

	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "department=CSE")
	assert.Contains(t, calls[0], "search=expo")
	assert.Contains(t, calls[0], "page=1")
	assert.Contains(t, calls[0], "per_page=10")
	assert.NotContains(t, calls[0], "event_type")
	assert.NotContains(t, calls[0], "year")

	s := out.String()
	assert.Contains(t, s, "Industry events (ICSR)")
	assert.Contains(t, s, "Filters: department=CSE, search=expo")
	assert.Contains(t, s, "Industry Expo 1")
	assert.Contains(t, s, "1,200")
	assert.Contains(t, s, "Page 1 of 3, 9 records")
}

func TestList_Chart(t *testing.T) {
	backend := &eventsBackend{}
	env, out := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	cmd := &ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, Chart: true, env: env}
	require.NoError(t, cmd.Execute(nil))

	s := out.String()
	assert.Contains(t, s, "By event type (this page)")
	assert.Contains(t, s, "Workshop  ██████████ 2")
	assert.Contains(t, s, "Seminar   █████ 1")
	assert.Contains(t, s, "66.7%")
}

func TestList_BackendMessageIsShownVerbatim(t *testing.T) {
	backend := &eventsBackend{status: http.StatusInternalServerError, body: map[string]string{"message": "X"}}
	env, _ := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	err := (&ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, env: env}).Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "X", err.Error())
}

func TestList_EmptyErrorBodyUsesSectionDefault(t *testing.T) {
	backend := &eventsBackend{status: http.StatusBadGateway, body: map[string]string{}}
	env, _ := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	err := (&ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, env: env}).Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch events", err.Error())
}

func TestList_UnauthorizedAddsHintButKeepsSession(t *testing.T) {
	backend := &eventsBackend{status: http.StatusUnauthorized, body: map[string]string{"error": "Token has expired"}}
	env, _ := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	err := (&ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, env: env}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token has expired")
	assert.Contains(t, err.Error(), "login again")
	assert.True(t, env.session.Authenticated())
}

func TestList_NoSessionShowsLoginViewWithoutRequest(t *testing.T) {
	backend := &eventsBackend{}
	env, out := newTestEnv(t, backend.handler)

	require.NoError(t, (&ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, env: env}).Execute(nil))
	assert.Contains(t, out.String(), "You are not logged in.")
	assert.Empty(t, backend.calls())
}

func TestList_UnknownSection(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	loginAs(t, env, 1)

	err := (&ListCommand{Args: sectionArg{Section: "alumni"}, Page: 1, env: env}).Execute(nil)
	assert.ErrorIs(t, err, sections.ErrUnknownSection)
}

func TestList_UnknownFilterField(t *testing.T) {
	backend := &eventsBackend{}
	env, _ := newTestEnv(t, backend.handler)
	loginAs(t, env, 1)

	err := (&ListCommand{Args: sectionArg{Section: "icsr"}, Filter: []string{"colour=red"}, Page: 1, env: env}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown filter "colour"`)
	assert.Empty(t, backend.calls())
}

func TestList_JSON(t *testing.T) {
	backend := &eventsBackend{}
	env, out := newTestEnv(t, backend.handler)
	env.json = true
	loginAs(t, env, 1)

	require.NoError(t, (&ListCommand{Args: sectionArg{Section: "icsr"}, Page: 1, Chart: true, env: env}).Execute(nil))

	var got listJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "icsr", got.Section)
	assert.Equal(t, 9, got.Total)
	assert.Equal(t, 3, got.TotalPages)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Hackathon", got.Rows[1]["Event"])
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "Workshop", got.Groups[0].Name)
}
