// Package jobs provides the bounded-retry polling primitive used for
// every "fire job, poll status, timeout" interaction with a remote
// service.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/pressureprofile/rma-starter/internal/models"
)

// StatusCheck queries the current status of a remote job. A returned
// error means the check itself failed (transport, auth, malformed
// response) and is never confused with a job that is still running.
type StatusCheck func(ctx context.Context) (models.JobStatus, error)

var errStillRunning = errors.New("job still running")

// Await polls check until the job reaches a terminal status or
// maxAttempts checks have been made. The first check happens
// immediately; subsequent checks are separated by interval.
//
// Await returns the last observed status. On attempt exhaustion that
// status is non-terminal and the caller must treat it as a timeout,
// distinct from an explicit JobFailed. Errors from check propagate
// immediately without further retries: an infrastructure error must
// not be masked as "still pending".
func Await(ctx context.Context, check StatusCheck, maxAttempts int, interval time.Duration) (models.JobStatus, error) {
	if maxAttempts < 1 {
		// retry.Attempts(0) means retry forever; a poll budget never does.
		maxAttempts = 1
	}

	var last models.JobStatus

	err := retry.Do(
		func() error {
			status, err := check(ctx)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			last = status
			if !status.Terminal() {
				return errStillRunning
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxAttempts)),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errStillRunning) }),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, errStillRunning) {
			// Attempt budget exhausted with the job still running.
			// Hand back the last observed status; judging the
			// timeout is the caller's business.
			return last, nil
		}
		return last, err
	}

	return last, nil
}
