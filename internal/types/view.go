package types

type SortKey string

const (
	SortTimestamp  SortKey = "timestamp"
	SortNetPnl     SortKey = "netPnl"
	SortGrossPnl   SortKey = "grossPnl"
	SortFee        SortKey = "fee"
	SortQuantity   SortKey = "quantity"
	SortPrice      SortKey = "price"
	SortInstrument SortKey = "instrument"
	SortDirection  SortKey = "direction"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortConfig orders the log table only; it never affects metrics.
type SortConfig struct {
	Key   SortKey   `json:"key"`
	Order SortOrder `json:"order"`
}

func DefaultSort() SortConfig {
	return SortConfig{Key: SortTimestamp, Order: Descending}
}

// Select returns the config after the user picks key: the same key flips the
// order, a new key starts descending.
func (c SortConfig) Select(key SortKey) SortConfig {
	if c.Key == key {
		if c.Order == Ascending {
			return SortConfig{Key: key, Order: Descending}
		}
		return SortConfig{Key: key, Order: Ascending}
	}
	return SortConfig{Key: key, Order: Descending}
}

// LogQuery is the log-table view request: free-text search plus ordering.
type LogQuery struct {
	Search string     `json:"search,omitempty"`
	Sort   SortConfig `json:"sort"`
}
