package elements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
)

// consumptionEntry mirrors one element of the fetchHourlyConsumption
// payload. Hour arrives in several shapes ("6", "06:00", 6.0), so both
// fields stay loosely typed until parsed.
type consumptionEntry struct {
	Hour        json.RawMessage `json:"hour"`
	Consumption json.RawMessage `json:"consumption"`
}

// FetchHourlyConsumption fetches one client's hourly readings for one
// day. A 404 means the day simply has no data and returns (nil, ErrNoData).
// Malformed entries are dropped individually; the rest of the day is
// still returned.
func (c *Client) FetchHourlyConsumption(ctx context.Context, scno string, date time.Time) ([]contracts.Reading, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	dateStr := date.Format("2006-01-02")
	fullURL := fmt.Sprintf("%s/api/fetchHourlyConsumption?scno=%s&date=%s",
		c.baseURL, url.QueryEscape(scno), dateStr)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	var entries []consumptionEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	readings := make([]contracts.Reading, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		hour, err := ParseHourField(rawToString(e.Hour))
		if err != nil {
			dropped++
			continue
		}

		cons, err := parseConsumption(rawToString(e.Consumption))
		if err != nil {
			dropped++
			continue
		}

		readings = append(readings, contracts.Reading{
			SCNO:        scno,
			Date:        day,
			Hour:        hour,
			Consumption: cons,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"scno":    scno,
		"date":    dateStr,
		"count":   len(readings),
		"dropped": dropped,
	}).Debug("Fetched hourly consumption")

	return readings, nil
}

// rawToString renders a raw JSON scalar as its bare text, stripping
// string quotes.
func rawToString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	return strings.Trim(s, `"`)
}

// ParseHourField parses the upstream hour field, accepting forms like
// "6", "06:00" and "6.0". The parsed hour must be within 0..23.
func ParseHourField(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return 0, fmt.Errorf("hour is empty")
	}

	// "06:00" keeps only the hour part
	if idx := strings.Index(value, ":"); idx >= 0 {
		value = value[:idx]
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q: %w", value, err)
	}

	hour := int(f)
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour out of range: %d", hour)
	}
	return hour, nil
}

// parseConsumption parses the consumption field as a float.
func parseConsumption(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return 0, fmt.Errorf("consumption is empty")
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid consumption %q: %w", value, err)
	}
	return f, nil
}
