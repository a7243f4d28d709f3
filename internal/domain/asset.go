package domain

type AssetType string

const (
	AssetServer   AssetType = "Server"
	AssetDatabase AssetType = "Database"
	AssetNetwork  AssetType = "Network"
	AssetEndpoint AssetType = "Endpoint"
)

const (
	MinImportance = 0
	MaxImportance = 5

	// HighImportanceThreshold — актив считается важным строго выше порога (> 3, а не >= 3)
	HighImportanceThreshold = 3
)

// AssetRecord — строка инвентаря. Владелец — inventory.Inventory.
type AssetRecord struct {
	// ID уникален в пределах инвентаря и выдается монотонно
	ID         int       `json:"id"`
	Name       string    `json:"name" validate:"required"`
	Type       AssetType `json:"type" validate:"required,oneof=Server Database Network Endpoint"`
	Importance int       `json:"importance" validate:"min=0,max=5"`
}

// IsHighImportance отвечает, попадает ли актив в метрику "High-Importance Assets".
func (a AssetRecord) IsHighImportance() bool {
	return a.Importance > HighImportanceThreshold
}

// CountHighImportance считает активы с важностью > 3.
func CountHighImportance(assets []AssetRecord) int {
	n := 0
	for _, a := range assets {
		if a.IsHighImportance() {
			n++
		}
	}
	return n
}

// DefaultInventory возвращает стартовый набор активов.
func DefaultInventory() []AssetRecord {
	return []AssetRecord{
		{ID: 1, Name: "Primary Web Server", Type: AssetServer, Importance: 5},
		{ID: 2, Name: "Customer Database", Type: AssetDatabase, Importance: 5},
		{ID: 3, Name: "Executive Laptop", Type: AssetEndpoint, Importance: 4},
	}
}
