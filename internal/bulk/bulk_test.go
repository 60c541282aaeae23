package bulk

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func baseRequest() *api.Request {
	return &api.Request{Model: "hrrr", SaveDir: "/data"}
}

func TestExpandCrossProduct(t *testing.T) {
	dates := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
	}
	reqs := Expand(baseRequest(), dates, []int{0, 6, 12})
	require.Len(t, reqs, 6)

	assert.Equal(t, dates[0], reqs[0].InitTime)
	assert.Equal(t, 0, reqs[0].LeadHours())
	assert.Equal(t, dates[1], reqs[5].InitTime)
	assert.Equal(t, 12, reqs[5].LeadHours())

	// Expanded requests are independent copies.
	reqs[0].Model = "changed"
	assert.Equal(t, "hrrr", reqs[1].Model)
}

func TestRunOrderingMatchesSerial(t *testing.T) {
	dates := []time.Time{
		time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	reqs := Expand(baseRequest(), dates, []int{6, 0})

	op := func(ctx context.Context, req *api.Request) (string, error) {
		// Stagger completions so parallel order differs from submit order.
		time.Sleep(time.Duration(req.LeadHours()) * time.Millisecond)
		return fmt.Sprintf("%s-f%02d", req.InitTime.Format("15"), req.LeadHours()), nil
	}

	parallel := Run(context.Background(), reqs, 4, op)
	serial := Run(context.Background(), reqs, 1, op)

	require.Len(t, parallel, 4)
	for i := range parallel {
		assert.Equal(t, serial[i].Path, parallel[i].Path, "slot %d", i)
	}
	// Sorted by lead first, init time second.
	assert.Equal(t, "00-f00", parallel[0].Path)
	assert.Equal(t, "06-f00", parallel[1].Path)
	assert.Equal(t, "00-f06", parallel[2].Path)
	assert.Equal(t, "06-f06", parallel[3].Path)
}

func TestRunCollectsFailuresWithoutAborting(t *testing.T) {
	reqs := Expand(baseRequest(), []time.Time{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}, []int{0, 1, 2, 3})

	var calls atomic.Int32
	op := func(ctx context.Context, req *api.Request) (string, error) {
		calls.Add(1)
		if req.LeadHours()%2 == 1 {
			return "", fmt.Errorf("lead %d failed", req.LeadHours())
		}
		return "ok", nil
	}

	results := Run(context.Background(), reqs, 2, op)
	assert.Equal(t, int32(4), calls.Load(), "every request runs despite failures")

	ok := Successes(results)
	require.Len(t, ok, 2)
	for _, r := range ok {
		assert.Equal(t, "ok", r.Path)
	}
}

func TestRunDefaultWorkers(t *testing.T) {
	reqs := Expand(baseRequest(), []time.Time{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}, []int{0})
	results := Run(context.Background(), reqs, 0, func(ctx context.Context, req *api.Request) (string, error) {
		return "x", nil
	})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestCycleFrequency(t *testing.T) {
	assert.Equal(t, 6*time.Hour, CycleFrequency("gfs"))
	assert.Equal(t, 6*time.Hour, CycleFrequency("ifs"))
	assert.Equal(t, time.Hour, CycleFrequency("hrrr"))
}

func TestLatestFindsNewestAvailableCycle(t *testing.T) {
	now := time.Date(2023, 1, 1, 12, 30, 0, 0, time.UTC)
	available := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)

	found := func(ctx context.Context, req *api.Request) bool {
		return !req.InitTime.After(available)
	}

	req, err := Latest(context.Background(), baseRequest(), now, 6*time.Hour, found)
	require.NoError(t, err)
	assert.Equal(t, available, req.InitTime)
}

func TestLatestGivesUpAfterLookback(t *testing.T) {
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	never := func(ctx context.Context, req *api.Request) bool { return false }

	_, err := Latest(context.Background(), baseRequest(), now, 3*time.Hour, never)
	assert.ErrorContains(t, err, "no hrrr cycle found")
}

func TestWaitReturnsOnceFound(t *testing.T) {
	req := baseRequest()
	req.InitTime = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	var polls atomic.Int32
	found := func(ctx context.Context, r *api.Request) bool {
		return polls.Add(1) >= 3
	}

	err := Wait(context.Background(), req, time.Millisecond, time.Second, found)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWaitTimesOut(t *testing.T) {
	req := baseRequest()
	never := func(ctx context.Context, r *api.Request) bool { return false }

	err := Wait(context.Background(), req, time.Millisecond, 10*time.Millisecond, never)
	assert.ErrorContains(t, err, "timed out")
}

func TestWaitHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := baseRequest()
	never := func(ctx context.Context, r *api.Request) bool { return false }

	err := Wait(ctx, req, time.Millisecond, time.Second, never)
	assert.ErrorIs(t, err, context.Canceled)
}
