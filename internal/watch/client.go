package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imageforge/gateway/model"
)

// Client talks to the gateway's HTTP surface.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Submit posts a job request and returns the finalized descriptor. A 400
// carries the validation details back in the error.
func (c *Client) Submit(ctx context.Context, req model.JobRequest) (model.JobDescriptor, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.JobDescriptor{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/request", bytes.NewReader(body))
	if err != nil {
		return model.JobDescriptor{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.JobDescriptor{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Status string              `json:"status"`
			Data   model.JobDescriptor `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return model.JobDescriptor{}, err
		}
		return out.Data, nil
	case http.StatusBadRequest:
		var out struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return model.JobDescriptor{}, fmt.Errorf("submission rejected")
		}
		return model.JobDescriptor{}, fmt.Errorf("submission rejected: %s", strings.Join(out.Details, "; "))
	default:
		var out struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if out.Error == "" {
			out.Error = resp.Status
		}
		return model.JobDescriptor{}, fmt.Errorf("submission failed: %s", out.Error)
	}
}

// Completed fetches the current completed-artifact listing.
func (c *Client) Completed(ctx context.Context) ([]model.ArtifactRecord, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/s3list", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing failed: %s", resp.Status)
	}

	var records []model.ArtifactRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
