package main

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// startProgress shows a spinner on out while work runs and returns the
// function that clears it. Non-terminal writers get nothing.
func startProgress(out io.Writer, message string) func() {
	if !isTerminal(out) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = out
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}
