package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// processResult is what a bounded subprocess left behind
type processResult struct {
	Output   []byte
	TimedOut bool
	// Alarmed is set when the binary died from its own SIGALRM
	Alarmed  bool
	ExitErr  error
	Duration time.Duration
}

// runBounded runs name in dir with stdout and stderr combined, killing its
// whole process group once timeout elapses. The returned error is only set
// when the parent context was cancelled or the process could not start.
func runBounded(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (processResult, error) {
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = killGrace
	isolateProcessGroup(cmd)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return processResult{}, err
	}
	runErr := cmd.Wait()
	res := processResult{
		Output:   out.Bytes(),
		ExitErr:  runErr,
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	res.TimedOut = errors.Is(tctx.Err(), context.DeadlineExceeded)
	res.Alarmed = killedByAlarm(runErr)
	return res, nil
}
