package agent

import (
	"github.com/harunnryd/ragent/internal/model/contract"
)

type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusAborted Status = "ABORTED"
)

// RunState belongs to exactly one Run and is discarded when it returns.
type RunState struct {
	History     []contract.Message
	Iteration   int
	Status      Status
	FinalAnswer string
	Err         error
}

func newRunState(systemPrompt, query string) *RunState {
	history := make([]contract.Message, 0, 8)
	history = append(history,
		contract.Message{Role: contract.RoleSystem, Content: systemPrompt},
		contract.Message{Role: contract.RoleUser, Content: query},
	)

	return &RunState{History: history, Status: StatusRunning}
}

func (s *RunState) append(msgs ...contract.Message) {
	s.History = append(s.History, msgs...)
}

func (s *RunState) finish(answer string) {
	s.Status = StatusDone
	s.FinalAnswer = answer
}

func (s *RunState) abort(err error) error {
	s.Status = StatusAborted
	s.Err = err
	return err
}

func (s *RunState) result() *Result {
	return &Result{
		Content:    s.FinalAnswer,
		Iterations: s.Iteration,
		History:    contract.CloneMessages(s.History),
	}
}
