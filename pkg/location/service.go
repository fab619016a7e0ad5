package location

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://restapi.amap.com"
	DefaultLimit   = 10
	DefaultTimeout = 10 * time.Second
)

// ErrNoAPIKey is returned by Search when the client was built without a key.
var ErrNoAPIKey = errors.New("amap api key is not configured")

// POI is a normalised search hit.
type POI struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// text is a string field of the AMap response. AMap encodes missing values
// as an empty JSON array instead of an empty string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = text(s)
	return nil
}

// PlaceTextResponse is shaped for the /v3/place/text response.
type PlaceTextResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Count  string `json:"count"`
	Pois   []struct {
		ID       text `json:"id"`
		Name     text `json:"name"`
		Type     text `json:"type"`
		Address  text `json:"address"`
		Location text `json:"location"`
		CityName text `json:"cityname"`
		AdName   text `json:"adname"`
	} `json:"pois"`
}

// Client queries the AMap place search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	limit      int
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

func WithLimit(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.limit = n
		}
	}
}

func NewClient(key string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		key:        key,
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search looks up places matching keyword, optionally restricted to city, and
// returns at most the configured limit of hits that carry a usable location.
// A successful query with no hits returns an empty slice.
func (c *Client) Search(ctx context.Context, keyword, city string) ([]POI, error) {
	if c.key == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("keywords", keyword)
	params.Set("output", "json")
	if city != "" {
		params.Set("city", city)
	}

	u := fmt.Sprintf("%s/v3/place/text?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amap search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amap search: unexpected status: %s", resp.Status)
	}

	var body PlaceTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("amap search: decode response: %w", err)
	}
	if body.Status != "1" {
		return nil, fmt.Errorf("amap search failed: %s", body.Info)
	}
	return normalize(body, c.limit), nil
}

func normalize(body PlaceTextResponse, limit int) []POI {
	results := []POI{}
	for i, p := range body.Pois {
		if i >= limit {
			break
		}
		lon, lat, ok := parseLocation(string(p.Location))
		if !ok {
			continue
		}
		city := string(p.CityName)
		if city == "" {
			city = string(p.AdName)
		}
		category, _, _ := strings.Cut(string(p.Type), ";")
		results = append(results, POI{
			Name:      string(p.Name),
			Address:   string(p.Address),
			City:      city,
			Type:      category,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return results
}

// parseLocation splits AMap's "lng,lat" pair.
func parseLocation(s string) (lon, lat float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lon, lat, true
}
