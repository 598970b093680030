package models

import "time"

// Snapshot is the full exportable state of a device
type Snapshot struct {
	Profile    *UserProfile `json:"profile"`
	Progress   []Progress   `json:"progress"`
	ExportDate time.Time    `json:"exportDate"`
}
