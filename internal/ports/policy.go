package ports

import "time"

// Policy bounds the in-memory queue between the refresh scheduler and the sinks.
type Policy struct {
	MaxQueueLen  int           `yaml:"max_queue_len"`
	MaxBatchSize int           `yaml:"max_batch_size"`
	IdleSleep    time.Duration `yaml:"idle_sleep"`
	OnQueueFull  string        `yaml:"on_queue_full"` // "reject", "block", "drop"
}
