package constants

// JobStatus is the canonical status of a document processing job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusExtracted JobStatus = "EXTRACTED" // page text available
	JobStatusResolved  JobStatus = "RESOLVED"  // metadata resolved
	JobStatusFailed    JobStatus = "FAILED"
)
