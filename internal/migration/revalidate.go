package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RevalidateClient triggers portfolio page regeneration on the portal after
// a successful row migration
type RevalidateClient struct {
	client *resty.Client
	url    string
}

// NewRevalidateClient creates a revalidation client for the given endpoint.
// An empty URL disables the hook.
func NewRevalidateClient(url string, timeout time.Duration) *RevalidateClient {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &RevalidateClient{
		client: client,
		url:    url,
	}
}

// Revalidate posts the user id to the portal's revalidation endpoint and
// returns the list of regenerated paths. Any transport error or non-2xx
// response is fatal for the run.
func (c *RevalidateClient) Revalidate(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if c.url == "" {
		return nil, nil
	}

	var out struct {
		Revalidated []string `json:"revalidated"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"userId": userID.String()}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return nil, apperrors.NewMigrationError("portfolio revalidation request failed", err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewMigrationError(
			fmt.Sprintf("portfolio revalidation returned status %d", resp.StatusCode()), nil)
	}

	return out.Revalidated, nil
}
