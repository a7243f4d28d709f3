package connectors

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

// Step задает один ответ MockTransport.
type Step struct {
	Text  string
	Err   error
	Delay time.Duration // Имитация задержки сети; прерывается отменой ctx
}

// Call фиксирует, что MockTransport получил на очередном вызове.
type Call struct {
	Prompt     string
	JSONMode   bool
	Credential string
}

// MockTransport — подменный транспорт: отвечает по сценарию, а когда сценарий кончился,
// отдает пример ответа (allocation или predictive по тексту промпта).
// Используется в тестах и в демо-режиме без ключа к модели.
type MockTransport struct {
	mu    sync.Mutex
	steps []Step
	calls []Call

	// Jitter — случайная задержка для демо-режима (0 — без задержки)
	Jitter time.Duration
}

func NewMockTransport(steps ...Step) *MockTransport {
	return &MockTransport{steps: steps}
}

func (m *MockTransport) Send(ctx context.Context, prompt string, jsonMode bool, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrUnauthenticated
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Prompt: prompt, JSONMode: jsonMode, Credential: credential})
	var step Step
	scripted := len(m.steps) > 0
	if scripted {
		step = m.steps[0]
		m.steps = m.steps[1:]
	}
	delay := step.Delay
	if m.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(m.Jitter)))
	}
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ErrCancelled
		}
	}
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	if scripted {
		return step.Text, step.Err
	}
	if strings.Contains(prompt, `"risk_assessment"`) {
		return domain.SampleRiskAssessmentJSON, nil
	}
	return domain.SampleAnalysisJSON, nil
}

// Calls возвращает копию журнала вызовов.
func (m *MockTransport) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount считает реальные вызовы транспорта.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
