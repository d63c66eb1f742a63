package sim

import (
	"context"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// Job is one independent integration request.
type Job struct {
	Name    string
	Params  physics.Params
	Span    Span
	Step    float64
	Force   physics.Force
	Options []Option
}

type JobResult struct {
	Name       string
	Trajectory *Trajectory
	Err        error
}

// RunBatch integrates jobs concurrently. Results keep the order of jobs.
// Stepper options must not share an integrator instance across jobs.
func RunBatch(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	dynamo.ParallelFor(len(jobs), 1, func(start, end int) {
		for i := start; i < end; i++ {
			j := jobs[i]
			traj, err := Integrate(ctx, j.Params, j.Span, j.Step, j.Force, j.Options...)
			results[i] = JobResult{Name: j.Name, Trajectory: traj, Err: err}
		}
	})
	return results
}
