package ingest

import (
	"context"
	"errors"
	"net/http"

	"github.com/AngelCh415/campaign-dashboard/internal/utils"
)

// GetWithRetry fetches url, retrying transport errors and 5xx/429 answers
// per b. Other 4xx answers are final.
func GetWithRetry(ctx context.Context, c HTTPClient, url string, b utils.Backoff) ([]byte, error) {
	var body []byte
	var final error
	err := b.Do(ctx, func(int) error {
		var err error
		body, err = fetch(ctx, c, url)
		var se *StatusError
		if errors.As(err, &se) && !retryable(se.Code) {
			final = err
			return nil
		}
		return err
	})
	if final != nil {
		return nil, final
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func retryable(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}
