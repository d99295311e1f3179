package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ERPResponse is returned by the ERP gateway after it accepts (or rejects)
// a check-in document.
type ERPResponse struct {
	Accepted bool   `json:"accepted"`
	Protocol string `json:"protocol"` // gateway-side tracking id
	Message  string `json:"message"`
}

// ERPClient posts check-in documents to the warehouse ERP gateway. The
// gateway is an external system owned by another team; this client only
// delivers the payload and records the answer.
type ERPClient struct {
	gatewayURL   string
	facilityCode string
	httpClient   *http.Client
}

func NewERPClient(gatewayURL, facilityCode string) *ERPClient {
	return &ERPClient{
		gatewayURL:   gatewayURL,
		facilityCode: facilityCode,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Deliver sends one check-in payload. payload is the serialized document
// exactly as stored on the erp_notifications row.
func (c *ERPClient) Deliver(ctx context.Context, payload []byte) (*ERPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/checkins", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Facility-Code", c.facilityCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erp: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("erp: gateway returned %d", resp.StatusCode)
	}

	var result ERPResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("erp: decode response: %w", err)
	}
	return &result, nil
}
