package service

import "time"

const (
	// ContestLockTTL bounds how long a finalize/sync run may hold the
	// per-contest lock before it is considered abandoned.
	ContestLockTTL = 2 * time.Minute

	// DefaultFinishWindow applies to duration-mode contests with no
	// configured duration and no known start time.
	DefaultFinishWindow = 24 * time.Hour

	// DefaultRestartDelay applies to cyclic contests with no configured
	// restart delay.
	DefaultRestartDelay = 24 * time.Hour

	contestLockKeyPrefix = "lock:contest:"
)
