package dto

import "github.com/skilllink/marketplace/internal/domain"

// CreateJobRequest hires a worker.
type CreateJobRequest struct {
	WorkerID    string `json:"workerId"`
	Description string `json:"description"`
}

// UpdateJobStatusRequest asks for a status change.
type UpdateJobStatusRequest struct {
	Status domain.JobStatus `json:"status"`
}

// SettleJobRequest pays for and reviews a completed job.
type SettleJobRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ClassifyRequest carries the free-text need to categorise.
type ClassifyRequest struct {
	Query string `json:"query"`
}
