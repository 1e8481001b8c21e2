package providers

import (
	"context"
	"sync"
	"time"
)

// MockExtractor is a deterministic Extractor for tests. Calls can be
// scripted to fail per image path, and the mock tracks how many
// extractions ran concurrently so tests can assert concurrency caps.
type MockExtractor struct {
	mu sync.Mutex

	// Fields returned on success.
	Fields PassportFields

	// Latency simulated per call.
	Latency time.Duration

	// Script holds per-path error sequences. Each Extract call for a
	// path pops the next entry; a nil entry (or exhausted script) means
	// success.
	Script map[string][]error

	calls       int
	inFlight    int
	maxInFlight int
}

// NewMockExtractor creates a mock that succeeds on every call.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		Fields: PassportFields{
			LastName:       "DOE",
			FirstName:      "JANE",
			PassportNumber: "AB123456",
			Nationality:    "TEST",
		},
	}
}

// Name returns the provider identifier.
func (m *MockExtractor) Name() string {
	return "mock"
}

// Extract returns the scripted outcome for imagePath.
func (m *MockExtractor) Extract(ctx context.Context, imagePath string) (*PassportFields, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	var err error
	if seq := m.Script[imagePath]; len(seq) > 0 {
		err = seq[0]
		m.Script[imagePath] = seq[1:]
	}
	fields := m.Fields
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			m.decrement()
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	m.decrement()

	if err != nil {
		return nil, err
	}
	return &fields, nil
}

func (m *MockExtractor) decrement() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

// Calls returns the total number of Extract invocations.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MaxInFlight returns the peak number of concurrent extractions observed.
func (m *MockExtractor) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
