package framework

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type namedFunc struct {
	RunnableFunc
	name string
}

func (f namedFunc) Name() string { return f.name }

func waitForCancel(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStopsTogether(t *testing.T) {
	r := NewRunner(context.Background())
	r.Go(RunnableFunc(waitForCancel), namedFunc{
		name: "failing",
		RunnableFunc: func(context.Context) error {
			return errors.New("boom")
		},
	})
	err := r.Wait()
	require.EqualError(t, err, "failing: boom")
	require.Error(t, r.Context().Err())
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(ctx).Go(RunnableFunc(waitForCancel), RunnableFunc(waitForCancel))
	cancel()
	require.NoError(t, r.Wait())
}

func TestRunnerAggregates(t *testing.T) {
	r := NewRunner(context.Background())
	for _, name := range []string{"a", "b"} {
		msg := name + " failed"
		r.Go(namedFunc{name: name, RunnableFunc: func(ctx context.Context) error {
			<-ctx.Done()
			return errors.New(msg)
		}})
	}
	r.Go(RunnableFunc(func(context.Context) error { return nil }))
	err := r.Wait()
	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 2)
	require.True(t, strings.Contains(err.Error(), "a: a failed"))
	require.True(t, strings.Contains(err.Error(), "b: b failed"))
}

type closer struct{ closed chan struct{} }

func (c *closer) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closer{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunWithContextCloser(ctx, c, func() error {
			<-c.closed
			return errors.New("closed")
		})
	}()
	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("not stopped")
	}

	c = &closer{closed: make(chan struct{})}
	require.EqualError(t, RunWithContextCloser(context.Background(), c, func() error {
		return errors.New("done")
	}), "done")
	_, open := <-c.closed
	require.False(t, open)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	one := errors.New("one")
	require.Equal(t, one, errs.Add(one).Aggregate())
	require.EqualError(t, errs.Add(errors.New("two")).Aggregate(), "one; two")
}
