package runner

import "time"

const (
	// DefaultTestTimeout bounds a single test binary
	DefaultTestTimeout = 10 * time.Second

	// AlarmClockMarker is printed by the shell when a binary dies from its own alarm()
	AlarmClockMarker = "Alarm clock"

	// TimeoutStatusText is displayed for functions whose binary never finished
	TimeoutStatusText = "Infinite Loop"

	// killGrace is how long to wait for output pipes after the process group is killed
	killGrace = 2 * time.Second
)
