package repository

// JobRepository stores job execution metadata.
type JobRepository interface {
	JobExecution

	// Close releases resources (such as database connections) used by the repository.
	Close() error
}
