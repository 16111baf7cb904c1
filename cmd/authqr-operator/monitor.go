package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/authqr/operator/pkg/connector"
)

// monitor resumes the stored session and runs the console until stdin
// closes, the operator quits or a signal arrives. Quitting keeps the
// credential; only an explicit logout or an expired session removes it.
func monitor(ctx context.Context, oc *connector.OperatorConnector) error {
	con := connector.NewConsole(oc, os.Stdout)
	defer oc.Controller.Shutdown()

	if !oc.Controller.Resume() {
		fmt.Println("Not logged in. Use: login <username> <password>")
	}
	fmt.Print("Type help for a list of commands.\n")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			oc.Log.Warn().Err(err).Msg("Failed to read console input")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || !con.Exec(ctx, line) {
				return nil
			}
		}
	}
}
