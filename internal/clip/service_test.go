package clip_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/clip"
	"github.com/vmunix/clipd/internal/clip/mocks"
	"github.com/vmunix/clipd/internal/events"
	"github.com/vmunix/clipd/internal/migrations"
	"github.com/vmunix/clipd/internal/pathguard"
	"github.com/vmunix/clipd/internal/plex"
	"github.com/vmunix/clipd/internal/transcode"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testHarness wires a Service against real pathguard, store, and bus,
// with mocked session resolution and transcoding.
type testHarness struct {
	svc      *clip.Service
	resolver *mocks.MockSessionResolver
	backend  *mocks.MockBackend
	prober   *mocks.MockProber
	store    *artifacts.Store
	bus      *events.Bus
	all      <-chan events.Event
	guard    *pathguard.Guard
	source   string // authorized source file inside the media root
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	ctrl := gomock.NewController(t)

	mediaRoot := t.TempDir()
	outputRoot := t.TempDir()
	source := filepath.Join(mediaRoot, "show.mkv")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	guard, err := pathguard.New(mediaRoot, outputRoot)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database; concurrent
	// tests must share one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	bus := events.NewBus(nil, testLogger())
	t.Cleanup(func() { _ = bus.Close() })

	h := &testHarness{
		resolver: mocks.NewMockSessionResolver(ctrl),
		backend:  mocks.NewMockBackend(ctrl),
		prober:   mocks.NewMockProber(ctrl),
		store:    artifacts.NewStore(db),
		bus:      bus,
		all:      bus.SubscribeAll(16),
		guard:    guard,
		source:   source,
	}
	h.svc = clip.NewService(h.resolver, guard, h.backend, h.prober, transcode.NewPool(2), h.store, bus, testLogger())
	return h
}

func (h *testHarness) session() *plex.Session {
	return &plex.Session{
		SessionKey: "42",
		User:       "alice",
		Title:      "Pilot",
		Type:       "episode",
		Show:       "The Expanse",
		Season:     "1",
		Episode:    "1",
		FilePath:   h.source,
		Duration:   3600,
		Offset:     123,
	}
}

func TestCreateClip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil)

	var gotSpec transcode.ClipSpec
	h.backend.EXPECT().
		ExtractClip(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec transcode.ClipSpec) error {
			gotSpec = spec
			return os.WriteFile(spec.Output, []byte("clip"), 0o644)
		})

	a, err := h.svc.CreateClip(ctx, clip.ClipRequest{SessionKey: "42", Start: 10, End: 40})
	require.NoError(t, err)

	assert.Equal(t, artifacts.KindVideo, a.Kind)
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, 30.0, a.Duration)
	assert.Equal(t, 10.0, a.SourceOffset)
	assert.FileExists(t, a.Path)
	assert.Equal(t, h.guard.OutputRoot(), filepath.Dir(a.Path))

	assert.Equal(t, 10.0, gotSpec.Start)
	assert.Equal(t, 30.0, gotSpec.Duration)
	assert.Equal(t, "Pilot", gotSpec.Tags["title"])
	assert.Equal(t, "alice", gotSpec.Tags["artist"])

	stored, err := h.store.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Path, stored.Path)

	evt := <-h.all
	created, ok := evt.(*events.ClipCreated)
	require.True(t, ok)
	assert.Equal(t, a.ID, created.ArtifactID)
	assert.Equal(t, "The Expanse - Pilot", created.Title)
}

func TestCreateClip_SessionNotFound(t *testing.T) {
	h := newHarness(t)

	h.resolver.EXPECT().Resolve(gomock.Any(), "99").Return(nil, plex.ErrSessionNotFound)

	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "99", Start: 0, End: 10})
	assert.ErrorIs(t, err, plex.ErrSessionNotFound)
}

func TestCreateClip_InvalidRange(t *testing.T) {
	h := newHarness(t)

	// Backend has no expectations: an invalid range must never reach it.
	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil)

	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 3500, End: 3700})

	var rangeErr *clip.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "end exceeds source duration", rangeErr.Reason)
}

func TestCreateClip_PathTraversal(t *testing.T) {
	h := newHarness(t)

	sess := h.session()
	sess.FilePath = "/etc/passwd"
	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(sess, nil)

	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 0, End: 10})

	require.ErrorIs(t, err, pathguard.ErrPathTraversal)
	assert.NotContains(t, err.Error(), "/etc/passwd")
}

func TestCreateClip_ExtractionFailureCleansUp(t *testing.T) {
	h := newHarness(t)

	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil)

	var partial string
	h.backend.EXPECT().
		ExtractClip(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec transcode.ClipSpec) error {
			partial = spec.Output
			require.NoError(t, os.WriteFile(spec.Output, []byte("torn"), 0o644))
			return &transcode.ExtractionError{ExitCode: 1, Stderr: "moov atom not found"}
		})

	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 10, End: 40})

	var extErr *transcode.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, 1, extErr.ExitCode)
	assert.NoFileExists(t, partial, "partial output must be removed")

	n, err := h.store.Count(artifacts.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n, "failed jobs must not be listed")

	evt := <-h.all
	failed, ok := evt.(*events.ExtractionFailed)
	require.True(t, ok)
	assert.Equal(t, 1, failed.ExitCode)
	assert.Equal(t, "42", failed.SessionKey)
}

func TestCreateClip_ProbesWhenDurationMissing(t *testing.T) {
	h := newHarness(t)

	sess := h.session()
	sess.Duration = 0
	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(sess, nil)
	h.prober.EXPECT().Duration(gomock.Any(), gomock.Any()).Return(100.0, nil)

	// End past the probed duration: the probe result must gate validation.
	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 0, End: 200})

	var rangeErr *clip.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "end exceeds source duration", rangeErr.Reason)
}

func TestCreateClip_ProbeFailure(t *testing.T) {
	h := newHarness(t)

	sess := h.session()
	sess.Duration = 0
	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(sess, nil)
	h.prober.EXPECT().Duration(gomock.Any(), gomock.Any()).Return(0.0, transcode.ErrProbeFailed)

	_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 0, End: 10})
	assert.ErrorIs(t, err, transcode.ErrProbeFailed)
}

func TestCreateSnapshot(t *testing.T) {
	h := newHarness(t)

	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil)
	h.backend.EXPECT().
		ExtractFrame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec transcode.FrameSpec) error {
			assert.Equal(t, 123.0, spec.Offset)
			return os.WriteFile(spec.Output, []byte("jpg"), 0o644)
		})

	a, err := h.svc.CreateSnapshot(context.Background(), clip.SnapshotRequest{SessionKey: "42", Offset: 123})
	require.NoError(t, err)

	assert.Equal(t, artifacts.KindImage, a.Kind)
	assert.Zero(t, a.Duration)
	assert.Equal(t, 123.0, a.SourceOffset)
	assert.FileExists(t, a.Path)

	evt := <-h.all
	_, ok := evt.(*events.SnapshotCreated)
	assert.True(t, ok)
}

func TestCreateSnapshot_OffsetAtDurationBoundary(t *testing.T) {
	h := newHarness(t)

	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil).Times(2)
	h.backend.EXPECT().
		ExtractFrame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec transcode.FrameSpec) error {
			return os.WriteFile(spec.Output, []byte("jpg"), 0o644)
		})

	// offset == duration is accepted.
	_, err := h.svc.CreateSnapshot(context.Background(), clip.SnapshotRequest{SessionKey: "42", Offset: 3600})
	require.NoError(t, err)

	// Just past it is not.
	_, err = h.svc.CreateSnapshot(context.Background(), clip.SnapshotRequest{SessionKey: "42", Offset: 3600.01})
	var rangeErr *clip.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "offset exceeds source duration", rangeErr.Reason)
}

func TestCreateClip_ConcurrentNamesDoNotCollide(t *testing.T) {
	h := newHarness(t)

	const jobs = 8
	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil).Times(jobs)
	h.backend.EXPECT().
		ExtractClip(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec transcode.ClipSpec) error {
			// O_EXCL surfaces any filename collision as an error.
			f, err := os.OpenFile(spec.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return err
			}
			return f.Close()
		}).
		Times(jobs)

	errs := make(chan error, jobs)
	for range jobs {
		go func() {
			_, err := h.svc.CreateClip(context.Background(), clip.ClipRequest{SessionKey: "42", Start: 0, End: 10})
			errs <- err
		}()
	}
	for range jobs {
		require.NoError(t, <-errs)
	}

	n, err := h.store.Count(artifacts.Filter{})
	require.NoError(t, err)
	assert.Equal(t, jobs, n)
}

func TestDeleteArtifact(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(h.guard.OutputRoot(), "alice_Pilot_1_aaaaaaaa.mp4")
	require.NoError(t, os.WriteFile(path, []byte("clip"), 0o644))

	a := &artifacts.Artifact{
		Kind:     artifacts.KindVideo,
		Filename: filepath.Base(path),
		Path:     path,
		Username: "alice",
	}
	require.NoError(t, h.store.Add(a))

	require.NoError(t, h.svc.DeleteArtifact(context.Background(), a.ID))

	assert.NoFileExists(t, path)
	_, err := h.store.Get(a.ID)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)

	evt := <-h.all
	deleted, ok := evt.(*events.ArtifactDeleted)
	require.True(t, ok)
	assert.Equal(t, a.ID, deleted.ArtifactID)
}

func TestDeleteArtifact_NotFound(t *testing.T) {
	h := newHarness(t)
	err := h.svc.DeleteArtifact(context.Background(), 12345)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestDeleteArtifact_TraversalInStoredPath(t *testing.T) {
	h := newHarness(t)

	victim := filepath.Join(t.TempDir(), "precious.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o644))

	a := &artifacts.Artifact{
		Kind:     artifacts.KindVideo,
		Filename: "precious.txt",
		Path:     victim,
		Username: "alice",
	}
	require.NoError(t, h.store.Add(a))

	err := h.svc.DeleteArtifact(context.Background(), a.ID)
	require.ErrorIs(t, err, pathguard.ErrPathTraversal)
	assert.FileExists(t, victim, "file outside the output root must survive")
}

func TestCreateClip_CanceledWhileQueued(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.resolver.EXPECT().Resolve(gomock.Any(), "42").Return(h.session(), nil)

	// Pool admission checks the context before the backend runs.
	svc := clip.NewService(h.resolver, h.guard, h.backend, h.prober, transcode.NewPool(1), h.store, h.bus, testLogger())

	got := make(chan error, 1)
	go func() {
		_, err := svc.CreateClip(ctx, clip.ClipRequest{SessionKey: "42", Start: 0, End: 10})
		got <- err
	}()

	select {
	case err := <-got:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("canceled job did not return")
	}
}

func TestServiceErrorsAreTyped(t *testing.T) {
	// The API layer maps each taxonomy member by errors.Is/As; make sure
	// nothing in the chain erases the sentinel.
	assert.True(t, errors.Is(plex.ErrSessionNotFound, plex.ErrSessionNotFound))
	var e *clip.InvalidRangeError
	assert.True(t, errors.As(&clip.InvalidRangeError{Reason: "negative start"}, &e))
}
