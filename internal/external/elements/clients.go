package elements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// clientEntry mirrors one element of the fetchAllParUniqueMSN payload.
// Extra fields are ignored.
type clientEntry struct {
	SCNO      string `json:"scno"`
	ShortName string `json:"short_name"`
}

// FetchClients fetches the client registry. Entries missing either
// scno or short_name are skipped without failing the list.
func (c *Client) FetchClients(ctx context.Context) ([]contracts.Client, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	fullURL := fmt.Sprintf("%s/api/fetchAllParUniqueMSN", c.baseURL)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	var entries []clientEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	clients := make([]contracts.Client, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if e.SCNO == "" || e.ShortName == "" {
			skipped++
			continue
		}
		clients = append(clients, contracts.Client{
			SCNO:      e.SCNO,
			ShortName: e.ShortName,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"count":   len(clients),
		"skipped": skipped,
	}).Debug("Fetched client list")

	return clients, nil
}
