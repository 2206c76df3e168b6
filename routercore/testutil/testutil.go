// Package testutil provides shared fakes for router tests.
package testutil

import (
	"context"
	"sync"
)

// GenCall records one Generate invocation.
type GenCall struct {
	System string
	Prompt string
}

// ScriptedGenerator is a fake text model. It satisfies the Generator
// interfaces in classify and specialist without importing either package.
type ScriptedGenerator struct {
	mu        sync.Mutex
	Responses []string // consumed in order; last one repeats
	Err       error    // returned on every call when set
	Calls     []GenCall
}

// NewScriptedGenerator returns a generator that replies with the given
// responses in order, repeating the final one.
func NewScriptedGenerator(responses ...string) *ScriptedGenerator {
	return &ScriptedGenerator{Responses: responses}
}

// FailingGenerator returns a generator whose every call fails with err.
func FailingGenerator(err error) *ScriptedGenerator {
	return &ScriptedGenerator{Err: err}
}

// Generate implements the text-generation contract.
func (g *ScriptedGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, GenCall{System: system, Prompt: prompt})
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", nil
	}
	idx := len(g.Calls) - 1
	if idx >= len(g.Responses) {
		idx = len(g.Responses) - 1
	}
	return g.Responses[idx], nil
}

// CallCount returns how many times Generate ran.
func (g *ScriptedGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}
