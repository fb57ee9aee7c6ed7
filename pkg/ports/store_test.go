package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/questline/pkg/ports"
)

// mockBackend is a minimal AnswerBackend used to check the contract suite itself.
type mockBackend struct {
	data map[string]map[string]string
}

func (m *mockBackend) Load(_ context.Context, ns string) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range m.data[ns] {
		out[k] = v
	}
	return out, nil
}

func (m *mockBackend) Put(_ context.Context, ns, key, value string) error {
	if m.data[ns] == nil {
		m.data[ns] = make(map[string]string)
	}
	m.data[ns][key] = value
	return nil
}

func (m *mockBackend) Clear(_ context.Context, ns string) error {
	delete(m.data, ns)
	return nil
}

type mockCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *mockCounter) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *mockCounter) Count(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

func TestAnswerBackend_Contract(t *testing.T) {
	ports.RunAnswerBackendContract(t, &mockBackend{data: make(map[string]map[string]string)})
}

func TestCounter_Contract(t *testing.T) {
	ports.RunCounterContract(t, &mockCounter{counts: make(map[string]int64)})
}
