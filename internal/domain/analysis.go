package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AnalysisKind определяет, какой ответ мы ждем от модели
type AnalysisKind string

const (
	KindAllocation AnalysisKind = "allocation" // Распределение бюджета + метрики дашборда
	KindPredictive AnalysisKind = "predictive" // Прогноз рисков по доменам
)

// ErrEmptyInventory — пользователь включил инвентарь, но не добавил ни одного актива.
var ErrEmptyInventory = errors.New("inventory enabled but empty")

// EmptyInventoryMessage — текст, который видит пользователь вместо ErrEmptyInventory.
const EmptyInventoryMessage = "Please add assets to the inventory first, or uncheck the 'Use Custom Asset Inventory' box."

// ParseKind разбирает kind из URL/флага.
func ParseKind(s string) (AnalysisKind, error) {
	switch AnalysisKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAllocation:
		return KindAllocation, nil
	case KindPredictive:
		return KindPredictive, nil
	default:
		return "", fmt.Errorf("unknown analysis kind %q", s)
	}
}

// OperationName возвращает имя операции для пользовательских уведомлений.
func (k AnalysisKind) OperationName() string {
	if k == KindPredictive {
		return "Predictive Analysis"
	}
	return "Investment Analysis"
}

// AnalysisRequest содержит входные параметры одного анализа.
// Собирается заново на каждый запуск и дальше не меняется.
type AnalysisRequest struct {
	Kind             AnalysisKind `json:"kind" validate:"required,oneof=allocation predictive"`
	Industry         string       `json:"industry" validate:"required"`
	CompanySize      string       `json:"company_size" validate:"required"`
	BudgetMinorUnits int64        `json:"budget" validate:"gte=0"` // Бюджет в фунтах (целое, без копеек)
	PrimaryGoal      string       `json:"primary_goal" validate:"required"`

	// Inventory == nil означает "инвентарь не используется"
	Inventory []AssetRecord `json:"inventory,omitempty" validate:"omitempty,dive"`
}

// UsesInventory отвечает, будет ли в промпте таблица активов.
func (r AnalysisRequest) UsesInventory() bool {
	return len(r.Inventory) > 0
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет теги структуры (бюджет >= 0, importance 0..5 и т.д.).
func (r AnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid request: field %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ValidateAsset проверяет одну запись инвентаря (используется при редактировании).
func ValidateAsset(a AssetRecord) error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	return nil
}
