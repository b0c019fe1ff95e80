package cli

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// WithSpinner runs fn while a progress spinner plays on stderr. Quiet
// mode runs fn directly. The spinner writes to stderr so stdout stays
// clean for pipeable output.
func WithSpinner(quiet bool, message string, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	return fn()
}
