package cli

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/release"
)

// terminalConfirmer asks the operator interactively. The default answer is
// no, and ctrl-c counts as no.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// assumeYesConfirmer answers every gate affirmatively, for --yes runs in CI.
type assumeYesConfirmer struct{}

func (assumeYesConfirmer) Confirm(string) (bool, error) { return true, nil }

func newConfirmer(assumeYes bool) release.Confirmer {
	if assumeYes {
		return assumeYesConfirmer{}
	}
	return terminalConfirmer{}
}
