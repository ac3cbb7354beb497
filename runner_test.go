package movi_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi"
	"github.com/moviops/movi/pkg/agent"
	"github.com/moviops/movi/pkg/domain"
)

type scriptedTurner struct {
	sessionIDs []string
	replies    []*agent.Response
}

func (t *scriptedTurner) Turn(_ context.Context, req agent.Request) (*agent.Response, error) {
	t.sessionIDs = append(t.sessionIDs, req.SessionID)
	reply := t.replies[0]
	if len(t.replies) > 1 {
		t.replies = t.replies[1:]
	}
	return reply, nil
}

func TestRunnerSharesOneSession(t *testing.T) {
	turner := &scriptedTurner{replies: []*agent.Response{
		{Text: "3 vehicles are unassigned.", Category: domain.ResponseSuccess},
	}}

	var out strings.Builder
	runner := movi.NewRunner()
	runner.Input = strings.NewReader("how many free vehicles?\nand now?\nexit\n")
	runner.Output = &out

	require.NoError(t, runner.Run(context.Background(), turner))

	require.Len(t, turner.sessionIDs, 2)
	assert.Equal(t, turner.sessionIDs[0], turner.sessionIDs[1])
	assert.Contains(t, out.String(), "3 vehicles are unassigned.")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunnerFlagsPendingConfirmation(t *testing.T) {
	turner := &scriptedTurner{replies: []*agent.Response{
		{Text: "Warning: this will remove the vehicle. Proceed?", Category: domain.ResponseConfirmationPending},
	}}

	var out strings.Builder
	runner := movi.NewRunner()
	runner.Input = strings.NewReader("remove the vehicle from trip 50\n")
	runner.Output = &out

	require.NoError(t, runner.Run(context.Background(), turner))
	assert.Contains(t, out.String(), "awaiting your confirmation")
}

func TestRunnerRequiresIO(t *testing.T) {
	runner := movi.NewRunner()
	assert.Error(t, runner.Run(context.Background(), &scriptedTurner{}))
}

func TestRunnerAppliesRenderer(t *testing.T) {
	turner := &scriptedTurner{replies: []*agent.Response{
		{Text: "plain", Category: domain.ResponseSuccess},
	}}

	var out strings.Builder
	runner := movi.NewRunner()
	runner.Input = strings.NewReader("hello\n")
	runner.Output = &out
	runner.Renderer = func(s string) (string, error) {
		return "[rendered] " + s, nil
	}

	require.NoError(t, runner.Run(context.Background(), turner))
	assert.Contains(t, out.String(), "[rendered] plain")
}
