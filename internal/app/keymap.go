package app

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeyRecord    = "ctrl+r"
	KeyRefresh   = "ctrl+l"
	KeyTab       = "tab"
	KeyEnter     = "enter"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
)
