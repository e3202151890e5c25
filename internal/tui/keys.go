package tui

// Keybinding constants
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyEsc      = "esc"
	KeyBest     = "1"
	KeyExpected = "2"
	KeyWorst    = "3"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyJ        = "j"
	KeyK        = "k"
	KeyGantt    = "g"
	KeyEdit     = "e"
	KeyResolve  = "r"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return StyleHelp.Render("Tab: cycle focus | 1/2/3: best/expected/worst | j/k: move | g: table/gantt | e: edit duration | r: re-solve | q: quit")
}
