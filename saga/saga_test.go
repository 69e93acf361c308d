package saga_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/specialistvlad/sagago/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickyModule struct{}

func (pickyModule) Name() string { return "picky" }

func (pickyModule) Claims() ([]saga.Claim, error) {
	return []saga.Claim{{
		Category: saga.CategoryJob,
		Scheme:   "picky",
		Factory: func(_ context.Context, u *url.URL, _ *saga.Session) (any, error) {
			if u.Host != "yes" {
				return nil, saga.Decline("host %q not accepted", u.Host)
			}
			return "picked", nil
		},
	}}, nil
}

// The facade shares one process-wide runtime, so the whole flow lives in a
// single test.
func TestFacade(t *testing.T) {
	require.NoError(t, saga.RegisterModule(pickyModule{}))

	first, err := saga.Instance()
	require.NoError(t, err)
	second, err := saga.Instance()
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.ErrorIs(t, saga.RegisterModule(pickyModule{}), saga.ErrAlreadyInitialized)

	b, err := saga.Resolve(context.Background(), saga.CategoryJob, "picky://yes", saga.NewSession())
	require.NoError(t, err)
	assert.Equal(t, "picked", b.Instance)

	_, err = saga.Resolve(context.Background(), saga.CategoryJob, "picky://no", nil)
	assert.ErrorIs(t, err, saga.ErrAllBackendsDeclined)
	var rerr *saga.ResolveError
	require.True(t, errors.As(err, &rerr))
	require.Len(t, rerr.Attempts, 1)
	assert.Equal(t, `host "no" not accepted`, rerr.Attempts[0].Reason)

	job, binding, err := saga.Bind[saga.JobService](context.Background(), saga.CategoryJob, "fork://localhost", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", binding.Adaptor)
	assert.Equal(t, "fork", job.URL().Scheme)

	_, _, err = saga.Bind[saga.JobService](context.Background(), saga.CategoryJob, "picky://yes", nil)
	assert.ErrorIs(t, err, saga.ErrCapabilityMismatch)

	assert.True(t, saga.IsDecline(saga.Decline("x")))
}
