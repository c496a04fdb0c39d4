package places

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const backOffMaxDuration = 3 * time.Second

// RetryableRoundTripper retries transport failures with exponential backoff
// for at most backOffMaxDuration. Responses, including error statuses, are
// returned as is. Only body-less requests can be retried safely.
type RetryableRoundTripper struct {
	Next           http.RoundTripper
	MaxElapsedTime time.Duration
}

var _ http.RoundTripper = (*RetryableRoundTripper)(nil)

func (rt *RetryableRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	next := rt.Next
	if next == nil {
		next = http.DefaultTransport
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = backOffMaxDuration
	if rt.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = rt.MaxElapsedTime
	}

	var resp *http.Response
	err := backoff.Retry(
		func() error {
			var err error
			resp, err = next.RoundTrip(req)
			if err != nil {
				if req.Context().Err() != nil {
					return backoff.Permanent(err)
				}
				return err
			}
			return nil
		},
		backoff.WithContext(policy, req.Context()),
	)

	// All retries failed
	if err != nil {
		return nil, err
	}

	return resp, nil
}
