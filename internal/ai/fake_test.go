package ai

import (
	"context"
	"sync"
)

// fakeProvider is a CompletionProvider driven by a function.
type fakeProvider struct {
	name     string
	complete func(req CompletionRequest) (string, error)

	mu       sync.Mutex
	requests []CompletionRequest
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.complete(req)
}

func (f *fakeProvider) calls() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompletionRequest(nil), f.requests...)
}
