package entity

import "strings"

const (
	StatusPending    = "pending"
	StatusOnHold     = "on-hold"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
	StatusFailed     = "failed"

	// StatusStoragePrefix is prepended to status values in the host tables.
	StatusStoragePrefix = "wc-"
)

// DefaultStatuses is the status set the panel manages unless configured otherwise.
var DefaultStatuses = []string{StatusOnHold, StatusProcessing, StatusCompleted}

var hostStatusNames = map[string]string{
	StatusPending:    "Pending payment",
	StatusOnHold:     "On hold",
	StatusProcessing: "Processing",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
	StatusRefunded:   "Refunded",
	StatusFailed:     "Failed",
}

// StatusName returns the host's display name for a status key.
func StatusName(status string) string {
	if name, ok := hostStatusNames[status]; ok {
		return name
	}
	return status
}

func StorageStatus(status string) string {
	if strings.HasPrefix(status, StatusStoragePrefix) {
		return status
	}
	return StatusStoragePrefix + status
}

func PlainStatus(status string) string {
	return strings.TrimPrefix(status, StatusStoragePrefix)
}
