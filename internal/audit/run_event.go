package audit

import "time"

// RunEvent описывает один завершенный анализ в журнале.
// Результаты и инвентарь не сохраняются, только метаданные запуска.
type RunEvent struct {
	ID          string `json:"id"`
	TraceID     string `json:"trace_id"`
	Kind        string `json:"kind"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Budget      int64  `json:"budget"`
	UsedAssets  int    `json:"used_assets"`

	// Результат: "SUCCEEDED", "FAILED" или "CANCELLED"
	Status     string    `json:"status"`
	Attempts   uint      `json:"attempts"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}
