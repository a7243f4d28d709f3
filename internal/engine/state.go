package engine

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

// Observer получает накопленные детали после каждого успешного allocation-анализа.
type Observer func(details domain.AnalysisDetails)

// ActiveRun — токен отмены текущего анализа.
type ActiveRun struct {
	ID        string              `json:"id"`
	Kind      domain.AnalysisKind `json:"kind"`
	StartedAt time.Time           `json:"started_at"`

	cancel context.CancelFunc
}

// RunState — общее состояние анализа. Создается в main и передается в Orchestrator и API.
// Одновременно существует не больше одного активного токена.
type RunState struct {
	mu sync.RWMutex

	active         *ActiveRun
	lastAllocation *domain.AllocationResult
	lastBudget     int64
	lastRisk       domain.RiskAssessment
	hasRun         bool
	details        domain.AnalysisDetails
	observers      []Observer
}

func NewRunState() *RunState {
	return &RunState{}
}

// TryAcquire делает run активным, если активного нет.
func (s *RunState) TryAcquire(run *ActiveRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return false
	}
	s.active = run
	return true
}

// Release снимает токен, только если он все еще принадлежит этому запуску.
func (s *RunState) Release(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && s.active.ID == runID {
		s.active = nil
	}
}

// Cancel отменяет текущий анализ. Сам токен снимает завершающийся запуск.
func (s *RunState) Cancel() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return "", false
	}
	s.active.cancel()
	return s.active.ID, true
}

// CancelRun отменяет анализ, только если активен именно runID.
func (s *RunState) CancelRun(runID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil || s.active.ID != runID {
		return false
	}
	s.active.cancel()
	return true
}

// Active возвращает копию активного токена.
func (s *RunState) Active() (ActiveRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return ActiveRun{}, false
	}
	return ActiveRun{ID: s.active.ID, Kind: s.active.Kind, StartedAt: s.active.StartedAt}, true
}

// Bootstrap кладет стартовый результат, не трогая AnalysisHasRun.
func (s *RunState) Bootstrap(res domain.AllocationResult, budget int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAllocation = &res
	s.lastBudget = budget
}

// PublishAllocation фиксирует успешный allocation-анализ и рассылает детали подписчикам.
func (s *RunState) PublishAllocation(res domain.AllocationResult, budget int64) domain.AnalysisDetails {
	addressed := res.Metrics.AddressedAssetNames
	if addressed == nil {
		addressed = []string{}
	}
	initiatives := res.Initiatives
	if initiatives == nil {
		initiatives = []domain.Initiative{}
	}

	s.mu.Lock()
	s.lastAllocation = &res
	s.lastBudget = budget
	s.hasRun = true
	s.details = s.details.Merge(domain.AnalysisDetails{AddressedAssets: addressed, Initiatives: initiatives})
	details := s.details
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	// Подписчиков зовем вне блокировки: они могут читать состояние
	for _, obs := range observers {
		obs(details)
	}
	return details
}

func (s *RunState) PublishRisk(assessment domain.RiskAssessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRisk = assessment
}

// Subscribe добавляет наблюдателя за деталями анализа.
func (s *RunState) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

func (s *RunState) HasRun() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasRun
}

// LastAllocation возвращает последний опубликованный результат и бюджет, с которым он считался.
func (s *RunState) LastAllocation() (domain.AllocationResult, int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastAllocation == nil {
		return domain.AllocationResult{}, 0, false
	}
	return *s.lastAllocation, s.lastBudget, true
}

func (s *RunState) LastRisk() domain.RiskAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRisk
}

func (s *RunState) Details() domain.AnalysisDetails {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.details
}
