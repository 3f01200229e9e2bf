// Package app is the bubbletea diary UI: it drives recording, transcription,
// and persistence, and renders the searchable entry list.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/voicediary/voicediary/internal/audio"
	"github.com/voicediary/voicediary/internal/store"
	"github.com/voicediary/voicediary/internal/transcribe"
	"github.com/voicediary/voicediary/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// EntryStore persists and lists diary entries.
type EntryStore interface {
	Save(ctx context.Context, userID, title, text string) (store.Entry, error)
	List(ctx context.Context, userID string) ([]store.Entry, error)
}

// Recorder captures microphone audio between Start and Stop.
type Recorder interface {
	Start() error
	Stop() (string, error)
	Elapsed() time.Duration
}

// focusArea tracks which control has keyboard focus.
type focusArea int

const (
	focusUser focusArea = iota
	focusTitle
	focusSearch
	focusEntries
)

// Options holds the collaborators a Model needs. All are constructed in
// main and passed in; the model owns no global state.
type Options struct {
	Store       EntryStore
	Recorder    Recorder
	Transcriber transcribe.Transcriber
	Logger      *zap.Logger
}

// Model is the root bubbletea model for the voice diary.
type Model struct {
	store       EntryStore
	recorder    Recorder
	transcriber transcribe.Transcriber
	log         *zap.Logger

	// Inputs
	userInput   textinput.Model
	titleInput  textinput.Model
	searchInput textinput.Model
	focus       focusArea

	// Recording state: the only state machine in the app. busy covers the
	// stop→transcribe→save pipeline so a second action can't interleave.
	recording bool
	busy      bool

	// Pinned at start so edits mid-pipeline can't change where the entry
	// lands.
	pendingUserID string
	pendingTitle  string

	// Entry list
	cache          entryCache
	loading        bool
	selected       int
	expanded       map[string]bool
	lastTranscript string

	// UI state
	statusText     string
	warningText    string
	errorMessage   string
	errorTransient bool
	width          int
	height         int
}

// New creates a Model with empty inputs and an idle recorder.
func New(opts Options) Model {
	user := textinput.New()
	user.Placeholder = "your user id"
	user.CharLimit = 64
	user.Width = 32
	user.Focus()

	title := textinput.New()
	title.Placeholder = "title for your entry"
	title.CharLimit = 128
	title.Width = 32

	search := textinput.New()
	search.Placeholder = "search by keyword"
	search.CharLimit = 64
	search.Width = 24

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return Model{
		store:       opts.Store,
		recorder:    opts.Recorder,
		transcriber: opts.Transcriber,
		log:         log.Named("app"),
		userInput:   user,
		titleInput:  title,
		searchInput: search,
		focus:       focusUser,
		expanded:    make(map[string]bool),
		statusText:  "Idle",
	}
}

// Init starts cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// userID returns the trimmed user id input.
func (m Model) userID() string {
	return strings.TrimSpace(m.userInput.Value())
}

// entryTitle returns the trimmed title input.
func (m Model) entryTitle() string {
	return strings.TrimSpace(m.titleInput.Value())
}

// startRecordingCmd begins device capture.
func (m Model) startRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.recorder.Start(); err != nil {
			return actionErrorMsg{Stage: "recording", Err: err, Transient: true}
		}
		return recordingStartedMsg{}
	}
}

// stopRecordingCmd halts capture and reports the temp file path.
func (m Model) stopRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := m.recorder.Stop()
		if errors.Is(err, audio.ErrNotRecording) {
			return stopWarningMsg{}
		}
		if err != nil {
			return actionErrorMsg{Stage: "recording", Err: err, Transient: true}
		}
		return recordingStoppedMsg{Path: path}
	}
}

// transcribeCmd runs speech recognition on the recorded file. On failure
// the temp file is kept so the recording isn't lost; its path is logged.
func (m Model) transcribeCmd(path string) tea.Cmd {
	log := m.log
	transcriber := m.transcriber
	return func() tea.Msg {
		text, err := transcriber.TranscribeFile(context.Background(), path)
		if err != nil {
			log.Error("transcription failed, keeping recording",
				zap.String("path", path),
				zap.Error(err),
			)
			return actionErrorMsg{Stage: "transcription", Err: err, Transient: true}
		}
		return transcribedMsg{Path: path, Text: text}
	}
}

// saveEntryCmd persists the transcription as a new diary entry.
func (m Model) saveEntryCmd(userID, title, text, path string) tea.Cmd {
	entryStore := m.store
	return func() tea.Msg {
		entry, err := entryStore.Save(context.Background(), userID, title, text)
		if err != nil {
			return actionErrorMsg{Stage: "save", Err: err, Transient: true}
		}
		return entrySavedMsg{Entry: entry, Path: path}
	}
}

// loadEntriesCmd fetches the user's entry list once per session.
func (m Model) loadEntriesCmd(userID string) tea.Cmd {
	entryStore := m.store
	return func() tea.Msg {
		entries, err := entryStore.List(context.Background(), userID)
		if err != nil {
			return actionErrorMsg{Stage: "load", Err: err, Transient: true}
		}
		return entriesLoadedMsg{UserID: userID, Entries: entries}
	}
}

// recordTickCmd refreshes the elapsed-time display once a second.
func recordTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return recordTickMsg{}
	})
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return clearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case recordingStartedMsg:
		m.recording = true
		m.statusText = "Recording... speak now"
		m.warningText = ""
		m.errorMessage = ""
		return m, recordTickCmd()

	case recordTickMsg:
		if m.recording {
			return m, recordTickCmd()
		}
		return m, nil

	case stopWarningMsg:
		m.recording = false
		m.warningText = "No recording in progress"
		m.statusText = "Idle"
		return m, nil

	case recordingStoppedMsg:
		m.recording = false
		m.busy = true
		m.statusText = "Transcribing..."
		return m, m.transcribeCmd(msg.Path)

	case transcribedMsg:
		m.lastTranscript = msg.Text
		m.statusText = "Saving entry..."
		return m, m.saveEntryCmd(m.pendingUserID, m.pendingTitle, msg.Text, msg.Path)

	case entrySavedMsg:
		m.busy = false
		m.statusText = "Entry saved"
		if msg.Entry.UserID == m.cache.userID {
			m.cache.prepend(msg.Entry)
			m.selected = 0
		}
		if err := os.Remove(msg.Path); err != nil {
			m.log.Warn("removing temp recording", zap.String("path", msg.Path), zap.Error(err))
		}
		return m, nil

	case entriesLoadedMsg:
		m.loading = false
		if msg.UserID == m.cache.userID {
			m.cache.replace(msg.Entries)
			m.selected = 0
		}
		return m, nil

	case actionErrorMsg:
		m.busy = false
		m.loading = false
		m.statusText = "Idle"
		m.errorMessage = fmt.Sprintf("%s: %v", msg.Stage, msg.Err)
		m.errorTransient = msg.Transient
		m.log.Error("action failed", zap.String("stage", msg.Stage), zap.Error(msg.Err))
		if msg.Transient {
			return m, clearTransientErrorCmd()
		}
		return m, nil

	case clearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC:
		return m, tea.Quit

	case KeyRecord:
		return m.toggleRecording()

	case KeyRefresh:
		return m.refreshEntries()

	case KeyTab:
		return m.cycleFocus()
	}

	// Keys below depend on which control has focus.
	if m.focus == focusEntries {
		return m.handleEntriesKey(msg)
	}
	return m.handleInputKey(msg)
}

// cycleFocus advances keyboard focus to the next control. Leaving the user
// id input re-points the entry cache.
func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	leavingUser := m.focus == focusUser

	m.focus = (m.focus + 1) % 4
	m.userInput.Blur()
	m.titleInput.Blur()
	m.searchInput.Blur()

	var cmd tea.Cmd
	switch m.focus {
	case focusUser:
		cmd = m.userInput.Focus()
	case focusTitle:
		cmd = m.titleInput.Focus()
	case focusSearch:
		cmd = m.searchInput.Focus()
	}

	if leavingUser {
		if loadCmd := m.syncUser(); loadCmd != nil {
			return m, tea.Batch(cmd, loadCmd)
		}
	}
	return m, cmd
}

// syncUser points the cache at the current user id input and returns a load
// command when the list hasn't been fetched this session.
func (m *Model) syncUser() tea.Cmd {
	uid := m.userID()
	if uid != m.cache.userID {
		m.cache.setUser(uid)
		m.selected = 0
		m.expanded = make(map[string]bool)
		m.loading = false
	}
	if uid != "" && !m.cache.loaded && !m.loading {
		m.loading = true
		return m.loadEntriesCmd(uid)
	}
	return nil
}

// refreshEntries replaces the cached list with a fresh fetch.
func (m Model) refreshEntries() (tea.Model, tea.Cmd) {
	uid := m.userID()
	if uid == "" {
		return m, nil
	}
	m.cache.setUser(uid)
	m.cache.invalidate()
	m.loading = true
	return m, m.loadEntriesCmd(uid)
}

// toggleRecording implements the start/stop action pair. Start validates
// the user id and title before touching the device.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.busy {
		m.warningText = "Still saving the previous entry"
		return m, nil
	}

	if m.recording {
		return m, m.stopRecordingCmd()
	}

	uid := m.userID()
	title := m.entryTitle()
	if uid == "" {
		return m.validationError("enter a user id before recording")
	}
	if title == "" {
		return m.validationError("enter a title before recording")
	}

	m.pendingUserID = uid
	m.pendingTitle = title
	if cmd := m.syncUser(); cmd != nil {
		return m, tea.Batch(cmd, m.startRecordingCmd())
	}
	return m, m.startRecordingCmd()
}

// validationError blocks the action with a message and no side effect.
func (m Model) validationError(text string) (tea.Model, tea.Cmd) {
	m.errorMessage = text
	m.errorTransient = true
	return m, clearTransientErrorCmd()
}

// handleInputKey routes a key to the focused text input.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Enter submits the field by advancing focus.
	if msg.String() == KeyEnter {
		return m.cycleFocus()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusUser:
		m.userInput, cmd = m.userInput.Update(msg)
	case focusTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case focusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.selected = 0
	}
	return m, cmd
}

// handleEntriesKey processes navigation within the entry list.
func (m Model) handleEntriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleEntries()

	switch msg.String() {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit

	case KeyJ, KeyDown:
		if m.selected < len(visible)-1 {
			m.selected++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case KeyEnter:
		if m.selected < len(visible) {
			id := visible[m.selected].ID
			m.expanded[id] = !m.expanded[id]
		}
		return m, nil
	}

	return m, nil
}

// visibleEntries returns the cached entries matching the search query.
func (m Model) visibleEntries() []store.Entry {
	return m.cache.filter(strings.TrimSpace(m.searchInput.Value()))
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, ui.TitleStyle.Render("VOICE DIARY"))
	sections = append(sections, m.renderInputs())
	sections = append(sections, m.renderStatusBar())

	if m.errorMessage != "" {
		sections = append(sections, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.errorMessage))
	}
	if m.warningText != "" {
		sections = append(sections, ui.WarningStyle.Render("⚠ "+m.warningText))
	}
	if m.lastTranscript != "" {
		sections = append(sections, m.renderTranscript())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderEntriesPanel())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderInputs() string {
	userLabel := ui.LabelStyle.Render(" User ID:")
	titleLabel := ui.LabelStyle.Render("   Title:")
	if m.focus == focusUser {
		userLabel = ui.LabelActiveStyle.Render(" User ID:")
	}
	if m.focus == focusTitle {
		titleLabel = ui.LabelActiveStyle.Render("   Title:")
	}

	return userLabel + " " + m.userInput.View() + "\n" +
		titleLabel + " " + m.titleInput.View()
}

func (m Model) renderStatusBar() string {
	var dot string
	if m.recording {
		elapsed := m.recorder.Elapsed()
		dot = ui.RecordingDotStyle.Render("● REC") +
			ui.DimStyle.Render(fmt.Sprintf(" %d:%02d",
				int(elapsed.Minutes()),
				int(elapsed.Seconds())%60,
			))
	} else {
		dot = ui.IdleDotStyle.Render("○ IDLE")
	}

	return dot + "  " + ui.DimStyle.Render(m.statusText)
}

func (m Model) renderTranscript() string {
	header := ui.PanelTitleStyle.Render("LAST TRANSCRIPTION")
	lines := wrapText(m.lastTranscript, max(20, m.width-4))
	for i, l := range lines {
		lines[i] = "  " + ui.TranscriptStyle.Render(l)
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func (m Model) renderEntriesPanel() string {
	searchLabel := ui.LabelStyle.Render("Search:")
	if m.focus == focusSearch {
		searchLabel = ui.LabelActiveStyle.Render("Search:")
	}

	visible := m.visibleEntries()

	var header string
	title := fmt.Sprintf("MY ENTRIES (%d)", len(visible))
	if m.focus == focusEntries {
		header = ui.PanelTitleActiveStyle.Render(title)
	} else {
		header = ui.PanelTitleStyle.Render(title)
	}
	header += "   " + searchLabel + " " + m.searchInput.View()

	var lines []string
	lines = append(lines, header)

	switch {
	case m.userID() == "":
		lines = append(lines, ui.DimStyle.Render("  Enter a user id to view diary entries"))

	case m.loading:
		lines = append(lines, ui.DimStyle.Render("  Loading your diary entries..."))

	case m.cache.loaded && len(m.cache.entries) == 0:
		lines = append(lines, ui.DimStyle.Render("  No diary entries found. Start recording now!"))

	default:
		for i, entry := range visible {
			marker := "▸"
			if m.expanded[entry.ID] {
				marker = "▾"
			}

			label := entry.Title + " - "
			ts := ui.TimestampStyle.Render(entry.Timestamp())
			var line string
			if i == m.selected && m.focus == focusEntries {
				line = ui.SelectedStyle.Render("> "+marker+" "+label) + ts
			} else {
				line = "  " + marker + " " + label + ts
			}
			lines = append(lines, truncateToWidth(line, m.width))

			if m.expanded[entry.ID] {
				for _, wl := range wrapText(entry.Text, max(10, m.width-6)) {
					lines = append(lines, ui.DimStyle.Render("      "+wl))
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var parts []string

	if m.recording {
		parts = append(parts, ui.FooterKeyStyle.Render("Ctrl+R")+ui.FooterDescStyle.Render(" Stop"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("Ctrl+R")+ui.FooterDescStyle.Render(" Record"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Focus"))
	parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Expand"))
	parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Nav"))
	parts = append(parts, ui.FooterKeyStyle.Render("Ctrl+L")+ui.FooterDescStyle.Render(" Refresh"))
	parts = append(parts, ui.FooterKeyStyle.Render("Ctrl+C")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
