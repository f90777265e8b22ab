package config

const (
	DefaultTimeZone = "Asia/Kolkata"

	// HistoryWindow caps how many effective weeks a client's reconstructed
	// transaction history walks back.
	HistoryWindow = 8

	// WeekPickerDepth is how many week-ending Saturdays the upload form
	// offers.
	WeekPickerDepth = 12

	// RecentUploadLimit is the default dashboard recent-uploads count.
	RecentUploadLimit = 5

	// Upload monitor runs Monday mornings, after the weekend upload window.
	UploadMonitorSchedule = "0 10 * * 1"

	// Pending batches older than this are flagged by the monitor.
	PendingStaleDays = 7
)

// PageSizes is the allow-list for client list pagination.
var PageSizes = []int{10, 25, 50, 100}
