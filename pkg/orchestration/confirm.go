package orchestration

import "github.com/pterm/pterm"

// TerminalConfirmer asks on the terminal before each step, defaulting
// to yes so that pressing enter walks through the whole pipeline.
type TerminalConfirmer struct{}

func (TerminalConfirmer) ConfirmStep(name, description string) (bool, error) {
	pterm.Println()
	pterm.Info.Printfln("Next step: %s", description)
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(true).
		Show("Run this step?")
}
