// Package inventory хранит пользовательский список активов в памяти процесса.
package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

var ErrNotFound = errors.New("asset not found")

// Шаблон записи, которую создает Add
const (
	defaultName       = "New Asset"
	defaultType       = domain.AssetServer
	defaultImportance = 3
)

// Patch — частичное изменение актива, nil-поля не трогаются.
type Patch struct {
	Name       *string           `json:"name,omitempty"`
	Type       *domain.AssetType `json:"type,omitempty"`
	Importance *int              `json:"importance,omitempty"`
}

type Summary struct {
	Total          int `json:"total"`
	HighImportance int `json:"high_importance"`
}

type Inventory struct {
	mu     sync.RWMutex
	assets []domain.AssetRecord
}

func New(initial []domain.AssetRecord) *Inventory {
	return &Inventory{assets: append([]domain.AssetRecord(nil), initial...)}
}

// List возвращает копию, порядок добавления сохраняется.
func (inv *Inventory) List() []domain.AssetRecord {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return append([]domain.AssetRecord{}, inv.assets...)
}

// Add добавляет запись-шаблон с id = max+1 (1 для пустого списка).
func (inv *Inventory) Add() domain.AssetRecord {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	a := domain.AssetRecord{
		ID:         inv.nextID(),
		Name:       defaultName,
		Type:       defaultType,
		Importance: defaultImportance,
	}
	inv.assets = append(inv.assets, a)
	return a
}

// Create добавляет заполненную запись. ID присваивается здесь же, переданный игнорируется.
func (inv *Inventory) Create(a domain.AssetRecord) (domain.AssetRecord, error) {
	if err := domain.ValidateAsset(a); err != nil {
		return domain.AssetRecord{}, err
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	a.ID = inv.nextID()
	inv.assets = append(inv.assets, a)
	return a, nil
}

func (inv *Inventory) Update(id int, p Patch) (domain.AssetRecord, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	i := inv.indexOf(id)
	if i < 0 {
		return domain.AssetRecord{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	updated := inv.assets[i]
	if p.Name != nil {
		updated.Name = *p.Name
	}
	if p.Type != nil {
		updated.Type = *p.Type
	}
	if p.Importance != nil {
		updated.Importance = *p.Importance
	}
	if err := domain.ValidateAsset(updated); err != nil {
		return domain.AssetRecord{}, err
	}

	inv.assets[i] = updated
	return updated, nil
}

func (inv *Inventory) Delete(id int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	i := inv.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	inv.assets = append(inv.assets[:i], inv.assets[i+1:]...)
	return nil
}

func (inv *Inventory) Summary() Summary {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return Summary{
		Total:          len(inv.assets),
		HighImportance: domain.CountHighImportance(inv.assets),
	}
}

func (inv *Inventory) nextID() int {
	maxID := 0
	for _, a := range inv.assets {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}

func (inv *Inventory) indexOf(id int) int {
	for i, a := range inv.assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}
