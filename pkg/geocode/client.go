package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

var errAPIKeyRequired = errors.New("geocode api key is required")

// Client calls the Google Geocoding API over plain HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the geocode client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	c := &Client{
		apiKey:  key,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Geocode resolves a postal address to coordinates. A ZERO_RESULTS answer maps
// to a validation error since it means the caller supplied an unusable address.
func (c *Client) Geocode(ctx context.Context, address types.Address) (types.LatLng, error) {
	formatted := strings.TrimSpace(address.Formatted())
	if formatted == "" {
		return types.LatLng{}, pkgerrors.New(pkgerrors.CodeValidation, "address is empty")
	}

	query := url.Values{}
	query.Set("address", formatted)

	resp, err := c.do(ctx, query)
	if err != nil {
		return types.LatLng{}, err
	}

	switch resp.Status {
	case statusOK:
	case statusZeroResults:
		return types.LatLng{}, pkgerrors.New(pkgerrors.CodeValidation, "address could not be located")
	default:
		return types.LatLng{}, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("geocoding failed with status %s", resp.Status))
	}

	if len(resp.Results) == 0 {
		return types.LatLng{}, pkgerrors.New(pkgerrors.CodeValidation, "address could not be located")
	}

	loc := resp.Results[0].Geometry.Location
	return types.LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func (c *Client) do(ctx context.Context, query url.Values) (*geocodeResponse, error) {
	query.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building geocode request")
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling geocode api")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 2048))
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("geocode api returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding geocode response")
	}
	return &decoded, nil
}
