package migration

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/folionet/casfolio/backend/internal/apperrors"
)

// uploadObject pushes a payload to the object store, retrying up to the
// configured attempt ceiling. Paths are content-derived and deterministic
// within a run, so re-attempts overwrite safely. Retries back off
// exponentially between attempts; exhaustion is a fatal migration error
// naming the bucket and attempt count.
func (s *Service) uploadObject(ctx context.Context, bucket, path string, data []byte, contentType, checksum string) (UploadResult, error) {
	limit := s.cfg.UploadRetryLimit
	if limit < 1 {
		limit = 1
	}

	var lastErr error
	for attempt := 1; attempt <= limit; attempt++ {
		err := s.objects.UploadObject(ctx, bucket, path, data, contentType)
		if err == nil {
			if attempt > 1 {
				s.logger.LogInfo("Upload succeeded after retry", map[string]interface{}{
					"bucket":  bucket,
					"path":    path,
					"attempt": attempt,
				})
			}
			return UploadResult{
				Bucket:   bucket,
				Path:     path,
				Checksum: checksum,
				Size:     int64(len(data)),
			}, nil
		}
		lastErr = err

		if attempt == limit {
			break
		}

		delay := s.retryDelay(attempt)
		s.logger.LogWarn("Upload failed, retrying", map[string]interface{}{
			"bucket":  bucket,
			"path":    path,
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			return UploadResult{}, apperrors.NewMigrationError("upload cancelled during retry", ctx.Err())
		case <-time.After(delay):
		}
	}

	return UploadResult{}, apperrors.NewMigrationError(
		fmt.Sprintf("upload to bucket %q failed after %d attempts", bucket, limit), lastErr)
}

// retryDelay computes the exponential backoff delay before the next attempt
func (s *Service) retryDelay(attempt int) time.Duration {
	initial := s.cfg.RetryInitialDelay
	if initial <= 0 {
		return 0
	}
	factor := s.cfg.RetryBackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if s.cfg.RetryMaxDelay > 0 && delay > s.cfg.RetryMaxDelay {
		delay = s.cfg.RetryMaxDelay
	}
	return delay
}
