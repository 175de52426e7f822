package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
	"github.com/0xcro3dile/coderag-go/internal/domain/usecases"
)

const chatHelp = `
Available commands:
  /help     - Show this help message
  /refresh  - Refresh the index with latest changes
  /save     - Save current chat session
  /load ID  - Load a previous chat session by ID
  /clear    - Clear current chat context
  /debug    - Show debug information about current context
  /rag      - Toggle between RAG and conversation-only modes
  /quit     - Exit the program`

func chatCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the codebase in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.startWatcher(ctx); err != nil {
				return err
			}

			session, err := a.newSession(ctx, "")
			if err != nil {
				return err
			}
			return runChat(ctx, session, os.Stdin, os.Stdout)
		},
	}
}

// runChat reads questions and slash commands line by line until /quit, EOF
// or ctx is done. The session is saved on the way out in every case.
func runChat(ctx context.Context, session *usecases.ChatSession, in io.Reader, out io.Writer) error {
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, readErr := readLines(readCtx, in)

	fmt.Fprintln(out, "\nChat session initialized. Type /help for available commands.")
loop:
	for {
		fmt.Fprint(out, "\nQuestion: ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			fmt.Fprintln(out, "\nResponse:", session.Answer(ctx, line))
			continue
		}
		if quit := runCommand(ctx, session, line, out); quit {
			break
		}
	}
	select {
	case err := <-readErr:
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
		}
	default:
	}

	fmt.Fprintln(out, "\nSaving session before exit...")
	return saveSession(context.WithoutCancel(ctx), session, out)
}

// readLines scans in on its own goroutine so the chat loop can stop on ctx
// while a read is still blocked. The goroutine exits at EOF or once ctx is
// done and its pending line is abandoned.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func runCommand(ctx context.Context, session *usecases.ChatSession, line string, out io.Writer) (quit bool) {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case "/quit":
		return true
	case "/help":
		fmt.Fprintln(out, chatHelp)
	case "/refresh":
		if err := session.RefreshIndex(ctx); err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "\nIndex refreshed with latest changes")
	case "/save":
		if err := saveSession(ctx, session, out); err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
		}
	case "/load":
		if len(parts) < 2 {
			fmt.Fprintln(out, "\nUsage: /load ID")
			return false
		}
		n, err := session.LoadSession(ctx, parts[1])
		switch {
		case errors.Is(err, ports.ErrSessionNotFound):
			fmt.Fprintf(out, "\nSession %s not found\n", parts[1])
		case err != nil:
			fmt.Fprintf(out, "\nError: %v\n", err)
		default:
			fmt.Fprintf(out, "\nLoaded %d messages from session %s\n", n, parts[1])
		}
	case "/clear":
		session.ClearHistory()
		fmt.Fprintln(out, "\nChat context cleared")
	case "/debug":
		fmt.Fprintln(out, session.DebugSnapshot())
	case "/rag":
		if session.ToggleRAG() {
			fmt.Fprintln(out, "\nRAG mode enabled")
		} else {
			fmt.Fprintln(out, "\nRAG mode disabled")
		}
	default:
		fmt.Fprintln(out, "\nUnknown command. Type /help for available commands.")
	}
	return false
}

func saveSession(ctx context.Context, session *usecases.ChatSession, out io.Writer) error {
	if err := session.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nChat history saved as session %s\n", session.ID())
	return nil
}
