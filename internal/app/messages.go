package app

import "github.com/voicediary/voicediary/internal/store"

// recordingStartedMsg is sent when device capture begins.
type recordingStartedMsg struct{}

// recordingStoppedMsg carries the temp WAV path of a finished recording.
type recordingStoppedMsg struct {
	Path string
}

// stopWarningMsg is sent when stop is requested with no capture active.
type stopWarningMsg struct{}

// transcribedMsg carries the recognized text for a recording.
type transcribedMsg struct {
	Path string
	Text string
}

// entrySavedMsg carries the persisted entry and the temp file to delete.
type entrySavedMsg struct {
	Entry store.Entry
	Path  string
}

// entriesLoadedMsg carries the entry list fetched for a user.
type entriesLoadedMsg struct {
	UserID  string
	Entries []store.Entry
}

// actionErrorMsg reports a failed action stage (device, transcribe, save,
// load). Every error is caught at the action boundary and rendered; none
// are retried automatically.
type actionErrorMsg struct {
	Stage     string
	Err       error
	Transient bool
}

// clearTransientErrorMsg clears a transient error after a timeout.
type clearTransientErrorMsg struct{}

// recordTickMsg refreshes the elapsed-time display while recording.
type recordTickMsg struct{}
