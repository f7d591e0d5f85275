//go:build !windows

package doctor

import (
	"fmt"
	"os"
	"os/exec"

	"xenora/shutdown"
)

// resetTerminal undoes any raw mode a previous crash left behind.
func resetTerminal() {
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = os.Stdin
	cmd.Run()
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	}()
}
