// Package cloudbeds fetches reservation detail from the Cloudbeds API.
// It is the ingestion side of the reporting pipeline: the aggregation
// engine only ever sees the finite, concatenated reservation list this
// package produces.
package cloudbeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

const reservationsEndpoint = "getReservationsWithRateDetails"

// ProgressFunc is called after each fetched page with the number of
// completed pages and the page total.
type ProgressFunc func(done, total int)

type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	concurrency int
}

func NewClient(baseURL, apiKey string, concurrency int) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     baseURL,
		apiKey:      apiKey,
		concurrency: concurrency,
	}
}

// FetchReservations retrieves every reservation for a property created
// on or after resultsFrom. An initial unpaged call determines the page
// count; pages are then fetched with bounded concurrency and
// concatenated in page order.
func (c *Client) FetchReservations(ctx context.Context, propertyID string, resultsFrom time.Time, progress ProgressFunc) ([]core.Reservation, error) {
	total, perPage, err := c.pageCounts(ctx, propertyID, resultsFrom)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	pages := (total + perPage - 1) / perPage

	slog.InfoContext(ctx, "Fetching reservations",
		"property_id", propertyID,
		"total", total,
		"per_page", perPage,
		"pages", pages)

	byPage := make([][]reservationRecord, pages)
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for page := 1; page <= pages; page++ {
		g.Go(func() error {
			records, err := c.fetchPage(gctx, propertyID, resultsFrom, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			byPage[page-1] = records

			mu.Lock()
			done++
			completed := done
			mu.Unlock()
			if progress != nil {
				progress(completed, pages)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reservations []core.Reservation
	for _, records := range byPage {
		for _, record := range records {
			res, err := record.toDomain()
			if err != nil {
				return nil, err
			}
			reservations = append(reservations, res)
		}
	}
	return reservations, nil
}

// pageCounts makes the initial unpaged call to learn the result total
// and the page size the API is using.
func (c *Client) pageCounts(ctx context.Context, propertyID string, resultsFrom time.Time) (total, perPage int, err error) {
	params := url.Values{}
	params.Set("propertyID", propertyID)
	params.Set("resultsFrom", core.DateKey(resultsFrom))

	env, err := c.get(ctx, params)
	if err != nil {
		return 0, 0, fmt.Errorf("initial reservations call: %w", err)
	}
	if env.Count < 1 {
		if env.Total == 0 {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("initial reservations call: bad page size %d", env.Count)
	}
	return env.Total, env.Count, nil
}

func (c *Client) fetchPage(ctx context.Context, propertyID string, resultsFrom time.Time, page int) ([]reservationRecord, error) {
	params := url.Values{}
	params.Set("propertyID", propertyID)
	params.Set("pageNumber", strconv.Itoa(page))
	params.Set("includeAllRooms", "true")
	params.Set("resultsFrom", core.DateKey(resultsFrom))

	env, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, params url.Values) (*envelope, error) {
	endpoint := c.baseURL + reservationsEndpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call Cloudbeds API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Cloudbeds API status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("Cloudbeds API reported failure: %s", env.Message)
	}
	return &env, nil
}
