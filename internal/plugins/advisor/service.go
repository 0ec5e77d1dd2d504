package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Subodhrana390/cropsense/internal/ai"
	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// cacheTTL bounds how long a suggestion answer is reused. Growing
// conditions do not change minute to minute, so an hour saves a lot of
// collaborator calls without going stale.
const cacheTTL = time.Hour

// AdvisorService produces crop suggestions and photo identifications.
type AdvisorService interface {
	Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResponse, error)
	Identify(ctx context.Context, req IdentifyRequest) (*CropIdentification, error)
}

type advisorService struct {
	gen   ai.Generator
	cache *redis.Client
}

// NewAdvisorService creates the advisor service. cache may be nil, in
// which case every suggestion goes to the collaborator.
func NewAdvisorService(gen ai.Generator, cache *redis.Client) AdvisorService {
	return &advisorService{gen: gen, cache: cache}
}

// Suggest returns crops suited to the given location, season, and soil
// type. Answers are cached per normalized condition triple.
func (s *advisorService) Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.NewValidation(validationMessages(err))
	}
	if !s.gen.Configured() {
		return nil, apperror.NewUnavailable("crop suggestions are not available right now")
	}

	key := suggestionCacheKey(req)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	prompt := fmt.Sprintf(
		`You are an agricultural expert. Suggest crops to grow in %s during the %s season on %s soil. `+
			`Respond with a JSON object of the form {"crops": ["crop name", ...]} and nothing else.`,
		req.Location, req.Season, req.SoilType,
	)

	var resp SuggestionResponse
	if err := s.gen.GenerateJSON(ctx, prompt, &resp); err != nil {
		return nil, apperror.NewUpstream(err)
	}
	if len(resp.Crops) == 0 {
		return nil, apperror.NewUpstream(fmt.Errorf("model returned no crops"))
	}

	s.cacheSet(ctx, key, &resp)
	return &resp, nil
}

// Identify analyzes a crop photo and returns structured details about the
// crop, including an estimated market price.
func (s *advisorService) Identify(ctx context.Context, req IdentifyRequest) (*CropIdentification, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.NewValidation(validationMessages(err))
	}
	if !s.gen.Configured() {
		return nil, apperror.NewUnavailable("crop identification is not available right now")
	}

	mimeType, image, err := ai.ParseDataURI(req.PhotoDataURI)
	if err != nil {
		return nil, apperror.NewBadRequest("photo_data_uri must be a base64 data URI")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, apperror.NewBadRequest("photo_data_uri must contain an image")
	}

	prompt := `You are an agricultural expert. Identify the crop in this photo. ` +
		`Respond with a JSON object with exactly these string fields: ` +
		`"crop_name", "estimated_price" (local market price with unit), "description", ` +
		`"growing_conditions", "common_pests_and_diseases". Respond with JSON only.`

	var ident CropIdentification
	if err := s.gen.GenerateVisionJSON(ctx, prompt, mimeType, image, &ident); err != nil {
		return nil, apperror.NewUpstream(err)
	}
	if ident.CropName == "" {
		return nil, apperror.NewUpstream(fmt.Errorf("model returned no crop name"))
	}

	return &ident, nil
}

// suggestionCacheKey derives a stable cache key from the normalized
// request fields.
func suggestionCacheKey(req SuggestionRequest) string {
	return "advisor:suggest:" +
		normalizeKeyPart(req.Location) + "|" +
		normalizeKeyPart(req.Season) + "|" +
		normalizeKeyPart(req.SoilType)
}

// cacheGet returns a cached response, or nil on miss or any cache error.
// Cache trouble is logged and otherwise ignored; it must never fail a
// request the collaborator could still serve.
func (s *advisorService) cacheGet(ctx context.Context, key string) *SuggestionResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("advisor cache read failed", "key", key, "error", err)
		}
		return nil
	}
	var resp SuggestionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		slog.Warn("advisor cache entry corrupt", "key", key, "error", err)
		return nil
	}
	return &resp
}

func (s *advisorService) cacheSet(ctx context.Context, key string, resp *SuggestionResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		slog.Warn("advisor cache write failed", "key", key, "error", err)
	}
}
