package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voicediary/voicediary/internal/audio"
	"github.com/voicediary/voicediary/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeStore is an in-memory EntryStore.
type fakeStore struct {
	entries map[string][]store.Entry
	saveErr error
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]store.Entry)}
}

func (f *fakeStore) Save(_ context.Context, userID, title, text string) (store.Entry, error) {
	if f.saveErr != nil {
		return store.Entry{}, f.saveErr
	}
	e := store.Entry{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
		Text:   text,
	}
	f.entries[userID] = append([]store.Entry{e}, f.entries[userID]...)
	return e, nil
}

func (f *fakeStore) List(_ context.Context, userID string) ([]store.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries[userID], nil
}

// fakeRecorder simulates device capture without hardware.
type fakeRecorder struct {
	recording bool
	startErr  error
	stopPath  string
	stopErr   error
}

func (f *fakeRecorder) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.recording = true
	return nil
}

func (f *fakeRecorder) Stop() (string, error) {
	if !f.recording {
		return "", audio.ErrNotRecording
	}
	f.recording = false
	if f.stopErr != nil {
		return "", f.stopErr
	}
	return f.stopPath, nil
}

func (f *fakeRecorder) Elapsed() time.Duration { return 0 }

// fakeTranscriber returns canned text.
type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) TranscribeFile(context.Context, string) (string, error) {
	return f.text, f.err
}

func newTestModel(s EntryStore, r Recorder, tr *fakeTranscriber) Model {
	m := New(Options{Store: s, Recorder: r, Transcriber: tr})
	m.width = 80
	m.height = 24
	return m
}

func applyUpdate(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keyCtrlR() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlR} }

func TestNewModel(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	if m.recording {
		t.Error("new model should not be recording")
	}
	if m.cache.loaded {
		t.Error("new model should have an empty cache")
	}
	if m.focus != focusUser {
		t.Error("new model should focus the user id input")
	}
}

func TestStartRequiresUserID(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(newFakeStore(), rec, &fakeTranscriber{})
	m.titleInput.SetValue("Morning")

	m, cmd := applyUpdate(t, m, keyCtrlR())

	if m.errorMessage == "" {
		t.Error("expected a validation message")
	}
	if rec.recording {
		t.Error("recorder must not start without a user id")
	}
	if cmd == nil {
		t.Error("validation error should schedule its own clearing")
	}
}

func TestStartRequiresTitle(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(newFakeStore(), rec, &fakeTranscriber{})
	m.userInput.SetValue("u1")

	m, _ = applyUpdate(t, m, keyCtrlR())

	if m.errorMessage == "" {
		t.Error("expected a validation message")
	}
	if rec.recording {
		t.Error("recorder must not start without a title")
	}
}

func TestStartTransitionsToRecording(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(newFakeStore(), rec, &fakeTranscriber{})
	m.userInput.SetValue("u1")
	m.titleInput.SetValue("Morning")
	// Cache already populated for this session.
	m.cache.setUser("u1")
	m.cache.replace(nil)

	m, cmd := applyUpdate(t, m, keyCtrlR())
	if cmd == nil {
		t.Fatal("expected a start command")
	}

	m, _ = applyUpdate(t, m, cmd())

	if !m.recording {
		t.Error("model should be recording after start")
	}
	if !rec.recording {
		t.Error("recorder should be capturing")
	}
	if m.pendingUserID != "u1" || m.pendingTitle != "Morning" {
		t.Errorf("pinned user/title = %q/%q", m.pendingUserID, m.pendingTitle)
	}
}

func TestDeviceErrorAbortsAction(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("device unavailable")}
	m := newTestModel(newFakeStore(), rec, &fakeTranscriber{})
	m.userInput.SetValue("u1")
	m.titleInput.SetValue("Morning")
	m.cache.setUser("u1")
	m.cache.replace(nil)

	m, cmd := applyUpdate(t, m, keyCtrlR())
	m, _ = applyUpdate(t, m, cmd())

	if m.recording {
		t.Error("device failure must leave the model idle")
	}
	if !strings.Contains(m.errorMessage, "device unavailable") {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
}

func TestStopWhileIdleWarns(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.cache.setUser("u1")
	m.cache.replace([]store.Entry{{ID: "e1", Title: "Old"}})
	// Flag says recording, device says idle; the stop surfaces a warning.
	m.recording = true

	m, cmd := applyUpdate(t, m, keyCtrlR())
	m, _ = applyUpdate(t, m, cmd())

	if m.warningText == "" {
		t.Error("expected a warning for stop with no capture")
	}
	if m.errorMessage != "" {
		t.Errorf("warning should not be an error, got %q", m.errorMessage)
	}
	if len(m.cache.entries) != 1 {
		t.Error("idle stop must leave the cache unchanged")
	}
}

// runPipeline drives stop → transcribe → save → cleanup via the messages
// each command produces.
func runPipeline(t *testing.T, m Model) Model {
	t.Helper()

	m2, cmd := applyUpdate(t, m, keyCtrlR())
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		m2, cmd = applyUpdate(t, m2, msg)
		// Stop once the pipeline settles back to a tick-style command.
		if _, ok := msg.(entrySavedMsg); ok {
			break
		}
		if _, ok := msg.(actionErrorMsg); ok {
			break
		}
	}
	return m2
}

func TestFullCycleSavesAndCleansUp(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "recording_1700000000.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write temp recording: %v", err)
	}

	st := newFakeStore()
	rec := &fakeRecorder{recording: true, stopPath: wav}
	m := newTestModel(st, rec, &fakeTranscriber{text: "Today I felt great"})
	m.userInput.SetValue("u1")
	m.titleInput.SetValue("Morning")
	m.cache.setUser("u1")
	m.cache.replace(nil)
	m.recording = true
	m.pendingUserID = "u1"
	m.pendingTitle = "Morning"

	m = runPipeline(t, m)

	if m.recording || m.busy {
		t.Error("model should be idle after the cycle")
	}
	if len(m.cache.entries) == 0 {
		t.Fatal("cache should hold the new entry")
	}
	first := m.cache.entries[0]
	if first.Title != "Morning" || first.Text != "Today I felt great" {
		t.Errorf("cache head = %q/%q", first.Title, first.Text)
	}
	if first.ID == "" {
		t.Error("saved entry should have an id")
	}
	if m.lastTranscript != "Today I felt great" {
		t.Errorf("lastTranscript = %q", m.lastTranscript)
	}
	if _, err := os.Stat(wav); !os.IsNotExist(err) {
		t.Error("temp recording should be deleted after a successful save")
	}
}

func TestTranscriptionFailureKeepsFile(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "recording_1700000001.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write temp recording: %v", err)
	}

	st := newFakeStore()
	rec := &fakeRecorder{recording: true, stopPath: wav}
	m := newTestModel(st, rec, &fakeTranscriber{err: errors.New("model error")})
	m.recording = true
	m.pendingUserID = "u1"
	m.pendingTitle = "Morning"

	m = runPipeline(t, m)

	if m.errorMessage == "" {
		t.Error("expected a transcription error")
	}
	if len(st.entries["u1"]) != 0 {
		t.Error("no entry may be persisted after a failed transcription")
	}
	if _, err := os.Stat(wav); err != nil {
		t.Error("temp recording must survive a failed transcription")
	}
}

func TestSaveFailureAbortsBeforeCaching(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "recording_1700000002.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write temp recording: %v", err)
	}

	st := newFakeStore()
	st.saveErr = errors.New("connection reset")
	rec := &fakeRecorder{recording: true, stopPath: wav}
	m := newTestModel(st, rec, &fakeTranscriber{text: "words"})
	m.recording = true
	m.pendingUserID = "u1"
	m.pendingTitle = "Morning"
	m.cache.setUser("u1")
	m.cache.replace(nil)

	m = runPipeline(t, m)

	if m.errorMessage == "" {
		t.Error("expected a save error")
	}
	if len(m.cache.entries) != 0 {
		t.Error("failed save must not reach the cache")
	}
}

func TestEntriesLoaded(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.cache.setUser("u1")

	entries := []store.Entry{
		{ID: "e2", UserID: "u1", Title: "Evening", Text: "later"},
		{ID: "e1", UserID: "u1", Title: "Morning", Text: "earlier"},
	}
	m, _ = applyUpdate(t, m, entriesLoadedMsg{UserID: "u1", Entries: entries})

	if !m.cache.loaded {
		t.Fatal("cache should be loaded")
	}
	if len(m.cache.entries) != 2 || m.cache.entries[0].Title != "Evening" {
		t.Errorf("cache = %+v", m.cache.entries)
	}
}

func TestEntriesLoadedForStaleUserIgnored(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.cache.setUser("u2")

	m, _ = applyUpdate(t, m, entriesLoadedMsg{UserID: "u1", Entries: []store.Entry{{ID: "e1"}}})

	if m.cache.loaded {
		t.Error("a stale load must not populate the cache")
	}
}

func TestUserChangeClearsCache(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.cache.setUser("u1")
	m.cache.replace([]store.Entry{{ID: "e1", Title: "Old"}})
	m.userInput.SetValue("u2")

	m, cmd := applyUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})

	if m.cache.loaded {
		t.Error("cache must be cleared when the user id changes")
	}
	if len(m.cache.entries) != 0 {
		t.Error("old user's entries must not survive the switch")
	}
	if !m.loading {
		t.Error("a fresh list fetch should be in flight")
	}
	if cmd == nil {
		t.Error("expected a load command")
	}
}

func TestExpandToggle(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.userInput.SetValue("u1")
	m.cache.setUser("u1")
	m.cache.replace([]store.Entry{
		{ID: "e1", Title: "Morning", Text: "first"},
		{ID: "e2", Title: "Evening", Text: "second"},
	})
	m.focus = focusEntries

	m, _ = applyUpdate(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.selected != 1 {
		t.Errorf("after j, selected = %d, want 1", m.selected)
	}

	m, _ = applyUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.expanded["e2"] {
		t.Error("enter should expand the selected entry")
	}

	m, _ = applyUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.expanded["e2"] {
		t.Error("enter again should collapse it")
	}
}

func TestViewShowsSentinelTimestamp(t *testing.T) {
	m := newTestModel(newFakeStore(), &fakeRecorder{}, &fakeTranscriber{})
	m.userInput.SetValue("u1")
	m.cache.setUser("u1")
	m.cache.replace([]store.Entry{{ID: "e1", Title: "Morning", Text: "fresh"}})

	view := m.View()
	if !strings.Contains(view, store.SentinelTimestamp) {
		t.Error("freshly saved entry should render the sentinel timestamp")
	}
	if !strings.Contains(view, "Morning - ") {
		t.Error("entries should be labeled \"<title> - <timestamp>\"")
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := New(Options{Store: newFakeStore(), Recorder: &fakeRecorder{}, Transcriber: &fakeTranscriber{}})
	if view := m.View(); view != "Initializing..." {
		t.Errorf("view without size = %q, want 'Initializing...'", view)
	}
}
