package services

import (
	"context"
	"sync"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// stubProvider is a scripted AI provider for service tests.
type stubProvider struct {
	mu           sync.Mutex
	question     string
	eval         domain.Evaluation
	err          error
	reachable    bool
	lastMaterial string
}

var _ driven.AIProvider = (*stubProvider)(nil)

func (p *stubProvider) GenerateQuestion(_ context.Context, material string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastMaterial = material
	return p.question, p.err
}

func (p *stubProvider) EvaluateAnswer(_ context.Context, _, _, material string) (domain.Evaluation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastMaterial = material
	return p.eval, p.err
}

func (p *stubProvider) TestConnection(context.Context) bool {
	return p.reachable
}

func (p *stubProvider) material() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastMaterial
}

// stubFactory hands out a fixed provider and records the settings it
// was asked to build with.
type stubFactory struct {
	provider     driven.AIProvider
	err          error
	lastProvider string
	lastSettings map[string]string
}

var _ driven.AIProviderFactory = (*stubFactory)(nil)

func (f *stubFactory) Create(provider string, settings map[string]string) (driven.AIProvider, error) {
	f.lastProvider = provider
	f.lastSettings = settings
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}
