// Package console runs the chat loop on plain standard input and output.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"docqa/internal/service"
)

// ChatPort is the subset of the QA service the console needs.
type ChatPort interface {
	Handle(ctx context.Context, sess service.Session, line string) service.Outcome
}

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

// Run reads lines from in until EOF, /quit or cancellation of ctx and returns
// the final session. Cancellation is noticed while waiting for input.
func Run(ctx context.Context, svc ChatPort, sess service.Session, in io.Reader, out io.Writer) service.Session {
	fmt.Fprintln(out, boldGreen("Document Q&A Assistant"))
	fmt.Fprintln(out, "Type /open <path> to load a document, /help for commands, /quit to leave.")
	fmt.Fprintln(out)

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)
	for {
		fmt.Fprint(out, boldGreen("You: "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return sess
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return sess
			}
			line = l
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return sess
		}
		outcome := svc.Handle(ctx, sess, line)
		sess = outcome.Session
		if outcome.Notice != "" {
			fmt.Fprintln(out, faint(outcome.Notice))
			fmt.Fprintln(out)
		}
		if outcome.Reply != nil {
			fmt.Fprintln(out, boldCyan("Assistant: ")+outcome.Reply.Text)
			fmt.Fprintln(out)
		}
		if outcome.Quit {
			return sess
		}
	}
}

// readLines scans in on its own goroutine so a blocked read does not hold up
// cancellation. The channel closes at EOF.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}
