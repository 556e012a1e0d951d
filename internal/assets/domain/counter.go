package domain

// Counter names one of the per-asset analytics counters.
type Counter string

const (
	CounterChats     Counter = "chats"
	CounterDownloads Counter = "downloads"
)

// Column returns the storage column backing the counter. Unknown counters yield
// ErrInvalidCounter, so no caller-provided string ever reaches SQL.
func (c Counter) Column() (string, error) {
	switch c {
	case CounterChats:
		return "total_chats", nil
	case CounterDownloads:
		return "total_downloads", nil
	default:
		return "", ErrInvalidCounter
	}
}
