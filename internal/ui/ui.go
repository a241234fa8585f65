package ui

// UI receives user-facing progress events from the chat controller.
type UI interface {
	Status(msg string)
	Progress(file string, pct int)
	Log(msg string)
}

type SilentUI struct{}

func (s SilentUI) Status(msg string)             {}
func (s SilentUI) Progress(file string, pct int) {}
func (s SilentUI) Log(msg string)                {}
