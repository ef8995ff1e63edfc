package jobs

import "context"

// Store persists job states so a restarted queue can pick up where it
// left off.
type Store interface {
	LoadJobs(ctx context.Context) ([]*ArtworkJob, error)
	UpsertJob(ctx context.Context, job *ArtworkJob) error
	DeleteJob(ctx context.Context, jobID string) error
}
