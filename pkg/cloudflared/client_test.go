// pkg/cloudflared/client_test.go

package cloudflared

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner answers cloudflared invocations from a script and records
// them.
type scriptedRunner struct {
	calls   []string
	answers map[string]scriptedAnswer
}

type scriptedAnswer struct {
	out string
	err error
}

func (s *scriptedRunner) run(ctx context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	s.calls = append(s.calls, key)
	ans, ok := s.answers[key]
	if !ok {
		return "", errors.New("unexpected cloudflared invocation: " + key)
	}
	return ans.out, ans.err
}

func newScriptedAgent(answers map[string]scriptedAnswer) (*Agent, *scriptedRunner) {
	r := &scriptedRunner{answers: answers}
	return NewAgent(nil, WithRunner(r.run)), r
}

func TestVersionParsing(t *testing.T) {
	t.Parallel()

	agent, _ := newScriptedAgent(map[string]scriptedAnswer{
		"--version": {out: "cloudflared version 2025.4.2 (built 2025-04-30-1234 UTC)\n"},
	})

	v, err := agent.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025.4.2", v.String())
}

func TestVersionUnrecognizedOutput(t *testing.T) {
	t.Parallel()

	agent, _ := newScriptedAgent(map[string]scriptedAnswer{
		"--version": {out: "something unexpected"},
	})

	_, err := agent.Version(context.Background())
	assert.Error(t, err)
}

func TestEnsureTunnelFindsExisting(t *testing.T) {
	t.Parallel()

	agent, runner := newScriptedAgent(map[string]scriptedAnswer{
		"tunnel list --output json": {out: tunnelListJSON},
	})

	remote, err := agent.EnsureTunnel(context.Background(), "home-server")
	require.NoError(t, err)
	assert.Equal(t, "home-server", remote.Name)
	assert.NotContains(t, strings.Join(runner.calls, "\n"), "tunnel create",
		"lookup-or-create must not create when the tunnel exists")
}

func TestEnsureTunnelCreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	created := false
	runner := &scriptedRunner{}
	runner.answers = map[string]scriptedAnswer{}
	agent := NewAgent(nil, WithRunner(func(ctx context.Context, args ...string) (string, error) {
		key := strings.Join(args, " ")
		runner.calls = append(runner.calls, key)
		switch key {
		case "tunnel list --output json":
			if created {
				return tunnelListJSON, nil
			}
			return `[]`, nil
		case "tunnel create home-server":
			created = true
			return "Created tunnel home-server with id 4f7c1e9a-2b3d-4c5e-8f90-1a2b3c4d5e6f", nil
		}
		return "", errors.New("unexpected invocation: " + key)
	}))

	remote, err := agent.EnsureTunnel(context.Background(), "home-server")
	require.NoError(t, err)
	assert.Equal(t, "home-server", remote.Name)
	assert.Equal(t, "4f7c1e9a-2b3d-4c5e-8f90-1a2b3c4d5e6f", remote.ID.String())
	assert.Contains(t, runner.calls, "tunnel create home-server")
}

func TestEnsureTunnelPassesThroughListFailure(t *testing.T) {
	t.Parallel()

	agent, _ := newScriptedAgent(map[string]scriptedAnswer{
		"tunnel list --output json": {out: "error fetching tunnels: api unreachable", err: errors.New("exit status 1")},
	})

	_, err := agent.EnsureTunnel(context.Background(), "home-server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tunnel list failed")
}

func TestRouteDNSTreatsExistingRouteAsConverged(t *testing.T) {
	t.Parallel()

	agent, _ := newScriptedAgent(map[string]scriptedAnswer{
		"tunnel route dns home-server www.example.com": {
			out: "failed to add route: code: 1003, reason: record with that host already exists",
			err: errors.New("exit status 1"),
		},
	})

	err := agent.RouteDNS(context.Background(), "home-server", "www.example.com")
	assert.NoError(t, err, "an existing route is converged state")
}

func TestRouteDNSSurfacesRealFailures(t *testing.T) {
	t.Parallel()

	agent, _ := newScriptedAgent(map[string]scriptedAnswer{
		"tunnel route dns home-server www.example.com": {
			out: "error: zone not found for www.example.com",
			err: errors.New("exit status 1"),
		},
	})

	err := agent.RouteDNS(context.Background(), "home-server", "www.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone not found")
}
