package config

import "errors"

// Sentinel errors for configuration and catalog operations.
var (
	ErrNoParticipants   = errors.New("assessment has no participants")
	ErrUnknownPreset    = errors.New("unknown scorer preset")
	ErrUnknownDialect   = errors.New("unknown dialect")
	ErrUnknownSchema    = errors.New("unknown schema type")
	ErrInvalidTaskCount = errors.New("task_count must not be negative")
	ErrPerAgentTasks    = errors.New("same_tasks=false is not supported")
	ErrDuplicateTaskID  = errors.New("duplicate task id in catalog")
)
