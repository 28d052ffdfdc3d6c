package journal

import (
	"time"

	"trade-journal/internal/interfaces"
)

// Options configure a journal. A nil Store keeps trades in memory only and a
// nil Location means time.Local.
type Options struct {
	Store    interfaces.TradeStore
	Key      string
	Location *time.Location
}

func New(opts Options) interfaces.Journal {
	return newJournal(opts)
}
