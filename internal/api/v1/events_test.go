package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/events"
)

func seedEvents(t *testing.T, ts *testServer, n int) {
	t.Helper()
	for i := range n {
		_, err := ts.eventLog.Append(events.NewClipCreated(int64(i+1), "42", "Pilot", "alice", 0, 10, "/out/a.mp4"))
		require.NoError(t, err)
	}
}

func TestListEvents(t *testing.T) {
	ts := newTestServer(t)
	seedEvents(t, ts, 3)

	w := ts.do(t, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[listEventsResponse](t, w)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, events.EventClipCreated, resp.Items[0].EventType)
	assert.Equal(t, int64(3), resp.Items[0].EntityID, "newest first")
	assert.NotEmpty(t, resp.Items[0].Payload)
}

func TestListEvents_Pagination(t *testing.T) {
	ts := newTestServer(t)
	seedEvents(t, ts, 5)

	w := ts.do(t, http.MethodGet, "/api/v1/events?limit=2&offset=4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[listEventsResponse](t, w)
	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Items[0].EntityID)
}

func TestListEvents_InvalidPagination(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/events?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEvents_Since(t *testing.T) {
	ts := newTestServer(t)
	seedEvents(t, ts, 2)

	since := time.Now().Add(-time.Minute).Format(time.RFC3339)
	w := ts.do(t, http.MethodGet, "/api/v1/events?since="+since, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[listEventsResponse](t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(1), resp.Items[0].EntityID, "oldest first")
}

func TestListEvents_InvalidSince(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/events?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEvents_NoEventLog(t *testing.T) {
	ts := newTestServer(t)

	srv, err := New(ServerDeps{
		Extractor: ts.extractor,
		Sessions:  ts.sessions,
		Artifacts: ts.store,
	}, Config{APIKey: testAPIKey}, testLogger())
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("X-Api-Key", testAPIKey)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListArtifactEvents(t *testing.T) {
	ts := newTestServer(t)

	a := &artifacts.Artifact{Kind: artifacts.KindVideo, Filename: "a.mp4", Path: "/out/a.mp4", Username: "alice"}
	require.NoError(t, ts.store.Add(a))

	_, err := ts.eventLog.Append(events.NewClipCreated(a.ID, "42", "Pilot", "alice", 0, 10, a.Path))
	require.NoError(t, err)
	_, err = ts.eventLog.Append(events.NewArtifactDeleted(a.ID, a.Filename, "alice"))
	require.NoError(t, err)
	// Unrelated entity must not show up.
	_, err = ts.eventLog.Append(events.NewClipCreated(a.ID+1, "43", "Heat", "bob", 0, 10, "/out/b.mp4"))
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/api/v1/artifacts/1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[listEventsResponse](t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, events.EventClipCreated, resp.Items[0].EventType)
	assert.Equal(t, events.EventArtifactDeleted, resp.Items[1].EventType)
}

func TestListArtifactEvents_ArtifactNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/artifacts/99/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
