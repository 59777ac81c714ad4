package services

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/pkg/restcountries"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/redis/go-redis/v9"
)

const (
	// countryCacheKey sits outside the application KeyRoot namespace so a
	// store teardown never evicts the country catalog.
	countryCacheKey = "visatrek.cache:countries"
	countryCacheTTL = 24 * time.Hour
)

// CountryService serves the normalized country list, caching it in Redis for
// a day. Cache failures degrade to a direct fetch; the list provider is the
// only hard dependency.
type CountryService struct {
	client restcountries.ClientInterface
	redis  *redis.Client
}

func NewCountryService(client restcountries.ClientInterface, redisClient *redis.Client) *CountryService {
	return &CountryService{
		client: client,
		redis:  redisClient,
	}
}

// GetCountries returns the country list, from cache when possible.
func (s *CountryService) GetCountries(ctx context.Context) ([]types.Country, error) {
	log := logger.GetLogger()

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, countryCacheKey).Bytes()
		if err == nil {
			var countries []types.Country
			if err := json.Unmarshal(cached, &countries); err == nil {
				return countries, nil
			}
			log.Warnw("Corrupt country cache entry, refetching", "error", err)
		} else if err != redis.Nil {
			log.Warnw("Country cache read failed", "error", err)
		}
	}

	countries, err := s.client.FetchCountries(ctx)
	if err != nil {
		return nil, apperrors.ExternalService("country list", err)
	}

	if s.redis != nil {
		if raw, err := json.Marshal(countries); err == nil {
			if err := s.redis.Set(ctx, countryCacheKey, raw, countryCacheTTL).Err(); err != nil {
				log.Warnw("Country cache write failed", "error", err)
			}
		}
	}

	return countries, nil
}
