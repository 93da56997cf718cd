package config

import "time"

// SweepConfig schedules the periodic absence sweep.
type SweepConfig struct {
	Enabled  bool
	Schedule string
	LockTTL  time.Duration
}

func LoadSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:  envBool("SWEEP_ENABLED", true),
		Schedule: envStr("SWEEP_CRON", "*/15 * * * *"),
		LockTTL:  envDur("SWEEP_LOCK_TTL", 2*time.Minute),
	}
}

// QueueConfig locates the RabbitMQ broker.  An empty URL disables event
// publishing.
type QueueConfig struct {
	URL      string
	Queue    string
	EventLog string
}

func LoadQueueConfig() QueueConfig {
	return QueueConfig{
		URL:      envStr("RABBITMQ_URL", ""),
		Queue:    envStr("RABBITMQ_QUEUE", "library_events"),
		EventLog: envStr("EVENT_LOG_PATH", "logs/events.log"),
	}
}
