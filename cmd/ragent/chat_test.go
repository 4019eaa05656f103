package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/harunnryd/ragent/internal/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoAnswerer struct {
	prefix  string
	queries []string
}

func (e *echoAnswerer) Answer(ctx context.Context, query string) string {
	e.queries = append(e.queries, query)
	return e.prefix + query
}

func testAgents() (map[string]*echoAnswerer, func(string) (agent.Answerer, error), *int) {
	agents := map[string]*echoAnswerer{
		agentRAG:   {prefix: "rag: "},
		agentTools: {prefix: "tools: "},
	}
	builds := 0
	build := func(name string) (agent.Answerer, error) {
		a, ok := agents[name]
		if !ok {
			return nil, fmt.Errorf("unknown agent %q", name)
		}
		builds++
		return a, nil
	}
	return agents, build, &builds
}

func TestChatSession_AnswersAndSwitchesAgents(t *testing.T) {
	agents, build, builds := testAgents()
	input := strings.Join([]string{
		"How many vacation days?",
		"",
		"/agent tools",
		"What's the weather?",
		"/agent rag",
		"/agent tools",
		"/exit",
		"never read",
	}, "\n")
	var out bytes.Buffer

	session, err := newChatSession(build, "RAG", strings.NewReader(input), &out)
	require.NoError(t, err)
	require.NoError(t, session.Run(context.Background()))

	assert.Equal(t, []string{"How many vacation days?"}, agents[agentRAG].queries)
	assert.Equal(t, []string{"What's the weather?"}, agents[agentTools].queries)
	assert.Contains(t, out.String(), "rag: How many vacation days?")
	assert.Contains(t, out.String(), "tools: What's the weather?")
	assert.NotContains(t, out.String(), "never read")
	assert.Equal(t, 2, *builds)
}

func TestChatSession_RejectsUnknownAgentAndKeepsCurrent(t *testing.T) {
	agents, build, _ := testAgents()
	input := "/agent \"nope\"\n/agent\n/bogus\nstill here"
	var out bytes.Buffer

	session, err := newChatSession(build, agentTools, strings.NewReader(input), &out)
	require.NoError(t, err)
	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(), `error: unknown agent "nope"`)
	assert.Contains(t, out.String(), "current agent: tools")
	assert.Contains(t, out.String(), "unknown command /bogus")
	assert.Equal(t, []string{"still here"}, agents[agentTools].queries)
}

func TestChatSession_UnknownInitialAgent(t *testing.T) {
	_, build, _ := testAgents()
	_, err := newChatSession(build, "sql", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}

func TestChatSession_StopsWhenContextCancelled(t *testing.T) {
	agents, build, _ := testAgents()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := newChatSession(build, agentRAG, strings.NewReader("question\n"), &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, session.Run(ctx))
	assert.Empty(t, agents[agentRAG].queries)
}
