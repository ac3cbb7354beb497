package movi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/moviops/movi/pkg/agent"
	"github.com/moviops/movi/pkg/domain"
)

// Runner drives an interactive conversation with the agent using provided
// IO. This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Runner struct {
	Input  io.Reader
	Output io.Writer
	// Renderer transforms the agent's reply before outputting it. This
	// allows for TUI rendering (markdown to ANSI) without coupling the
	// core package.
	Renderer ContentRenderer

	Owner       string
	PageContext string
}

// ContentRenderer is a function that transforms content before output.
type ContentRenderer func(string) (string, error)

// Turner runs one conversational turn. The agent pipeline implements it.
type Turner interface {
	Turn(ctx context.Context, req agent.Request) (*agent.Response, error)
}

// NewRunner creates a new Runner. The caller must set Input and Output
// (usually os.Stdin and os.Stdout).
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the conversation loop until EOF or an exit command. All
// turns share one session, so a pending confirmation on one line is
// resolved by the next.
func (r *Runner) Run(ctx context.Context, turner Turner) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)
	sessionID := uuid.NewString()

	for {
		fmt.Fprint(r.Output, "> ")
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Graceful exit on EOF
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}

		resp, err := turner.Turn(ctx, agent.Request{
			SessionID:   sessionID,
			Owner:       r.Owner,
			Text:        input,
			PageContext: r.PageContext,
		})
		if err != nil {
			return fmt.Errorf("turn error: %w", err)
		}

		output := resp.Text
		if r.Renderer != nil {
			if rendered, err := r.Renderer(output); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(r.Output, strings.TrimSpace(output))

		if resp.Category == domain.ResponseConfirmationPending {
			fmt.Fprintln(r.Output, "(awaiting your confirmation)")
		}
	}
}
