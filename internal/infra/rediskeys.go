package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "cyberinvest"
)

// Ключи (состояние)
const (
	// RedisKeyLastDetails — последние детали анализа, для тех, кто подписался позже
	RedisKeyLastDetails = RedisNamespace + ":analysis:details:last"
)

// Каналы Pub/Sub (события)
const (
	RedisChanNotifications   = RedisNamespace + ":notifications"
	RedisChanAnalysisDetails = RedisNamespace + ":analysis:details"
	// RedisChanAnalysisCancel — payload "*" отменяет текущий анализ, иначе это ID запуска
	RedisChanAnalysisCancel = RedisNamespace + ":analysis:cancel"
)

// CancelAll отменяет текущий анализ, не проверяя ID запуска.
const CancelAll = "*"
