package models

import (
	"fmt"
	"time"
)

type RecorderStateType string

const (
	RecorderStateStopped RecorderStateType = "stopped"
	RecorderStateRunning RecorderStateType = "running"
	RecorderStateError   RecorderStateType = "error"
)

func ParseRecorderStateType(s string) (RecorderStateType, error) {
	switch s {
	case "stopped":
		return RecorderStateStopped, nil
	case "running":
		return RecorderStateRunning, nil
	case "error":
		return RecorderStateError, nil
	default:
		return "", fmt.Errorf("invalid recorder state: %s", s)
	}
}

// RecorderStatus describes the statistics recorder. Error holds the last
// failed snapshot and is cleared by the next successful one.
type RecorderStatus struct {
	State          RecorderStateType
	Snapshots      int
	LastSnapshotID string
	LastSnapshotAt time.Time
	Error          error
}
