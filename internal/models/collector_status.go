package models

import "time"

type CollectorState string

const (
	CollectorIdle     CollectorState = "IDLE"
	CollectorRunning  CollectorState = "RUNNING"
	CollectorSuccess  CollectorState = "SUCCESS"
	CollectorError    CollectorState = "ERROR"
	CollectorDisabled CollectorState = "DISABLED"
)

// CollectorStatus is the externally visible state of one collector.
// Values are copied out of the registry, never shared.
type CollectorStatus struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Type              string         `json:"type"`
	Status            CollectorState `json:"status"`
	Enabled           bool           `json:"enabled"`
	Schedule          string         `json:"schedule"`
	LastRun           time.Time      `json:"lastRun,omitempty"`
	SuccessCount      int64          `json:"successCount"`
	ErrorCount        int64          `json:"errorCount"`
	LastExecutionTime int64          `json:"lastExecutionTimeMs"`
	AvgExecutionTime  float64        `json:"averageExecutionTimeMs"`
	LastError         string         `json:"lastError,omitempty"`
}
