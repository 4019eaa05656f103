package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/harunnryd/ragent/internal/agent"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	RunE: func(cmd *cobra.Command, args []string) error {
		agentName, _ := cmd.Flags().GetString("agent")

		return executeWithComponents(cmd, func(ctx context.Context, c *components) error {
			session, err := newChatSession(c.agent, agentName, os.Stdin, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return session.Run(ctx)
		})
	},
}

// chatSession is a line-oriented REPL. Every line is an independent query; no
// history is carried between questions.
type chatSession struct {
	build   func(name string) (agent.Answerer, error)
	agents  map[string]agent.Answerer
	current string
	reader  *bufio.Reader
	out     io.Writer
}

func newChatSession(build func(string) (agent.Answerer, error), initial string, in io.Reader, out io.Writer) (*chatSession, error) {
	s := &chatSession{
		build:  build,
		agents: make(map[string]agent.Answerer),
		reader: bufio.NewReader(in),
		out:    out,
	}
	if err := s.use(initial); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *chatSession) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "ragent chat (agent: %s)\n", s.current)
	fmt.Fprintln(s.out, "Type '/agent rag|tools' to switch, '/exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(s.out, "> ")
		line, err := s.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}

		if done := s.handle(ctx, line); done || err == io.EOF {
			return nil
		}
	}
}

// handle processes one input line and reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	text := strings.TrimSpace(line)
	if text == "" {
		return false
	}

	if !strings.HasPrefix(text, "/") {
		fmt.Fprintln(s.out, s.agents[s.current].Answer(ctx, text))
		return false
	}

	parts, err := shlex.Split(text)
	if err != nil {
		parts = strings.Fields(text)
	}
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "/exit", "/quit":
		return true
	case "/agent":
		if len(parts) < 2 {
			fmt.Fprintf(s.out, "current agent: %s\n", s.current)
			return false
		}
		if err := s.use(parts[1]); err != nil {
			slog.Warn("Agent switch failed", "agent", parts[1], "error", err)
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(s.out, "switched to %s\n", s.current)
	case "/help":
		fmt.Fprintln(s.out, "/agent [rag|tools]  show or switch the answering agent")
		fmt.Fprintln(s.out, "/exit               leave the session")
	default:
		fmt.Fprintf(s.out, "unknown command %s (try /help)\n", parts[0])
	}
	return false
}

func (s *chatSession) use(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := s.agents[name]; !ok {
		a, err := s.build(name)
		if err != nil {
			return err
		}
		s.agents[name] = a
	}
	s.current = name
	return nil
}

func init() {
	chatCmd.Flags().StringP("agent", "a", agentRAG, "agent to start with (rag, tools)")
	rootCmd.AddCommand(chatCmd)
}
