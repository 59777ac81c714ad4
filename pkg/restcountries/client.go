// Package restcountries wraps the REST Countries v3.1 API used to populate
// the trip-setup country picker.
package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
)

const defaultBaseURL = "https://restcountries.com/v3.1"

// ClientInterface defines the interface for country list operations.
type ClientInterface interface {
	FetchCountries(ctx context.Context) ([]types.Country, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2  string `json:"cca2"`
	CCA3  string `json:"cca3"`
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	Demonyms map[string]struct {
		F string `json:"f"`
		M string `json:"m"`
	} `json:"demonyms"`
}

// NewClient creates a REST Countries client. An empty baseURL selects the
// public API endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchCountries returns the normalized country list sorted by display name.
// Entries without both ISO codes and a common name are skipped.
func (c *Client) FetchCountries(ctx context.Context) ([]types.Country, error) {
	log := logger.GetLogger()

	url := fmt.Sprintf("%s/all?fields=name,cca2,cca3,flags,demonyms", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("REST Countries returned non-OK status", "statusCode", resp.StatusCode)
		return nil, fmt.Errorf("restcountries API returned status: %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	countries := make([]types.Country, 0, len(raw))
	for _, rc := range raw {
		alpha2 := strings.ToUpper(rc.CCA2)
		alpha3 := strings.ToUpper(rc.CCA3)
		if alpha2 == "" || alpha3 == "" || rc.Name.Common == "" {
			continue
		}

		flagURL := rc.Flags.SVG
		if flagURL == "" {
			flagURL = fmt.Sprintf("https://flagcdn.com/%s.svg", strings.ToLower(alpha2))
		}

		var demonym string
		if eng, ok := rc.Demonyms["eng"]; ok {
			demonym = eng.M
			if demonym == "" {
				demonym = eng.F
			}
		}

		countries = append(countries, types.Country{
			Name:         rc.Name.Common,
			OfficialName: rc.Name.Official,
			Alpha2:       alpha2,
			Alpha3:       alpha3,
			FlagURL:      flagURL,
			FlagPngURL:   rc.Flags.PNG,
			Demonym:      demonym,
		})
	}

	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})

	log.Debugw("Fetched country list", "count", len(countries))
	return countries, nil
}
