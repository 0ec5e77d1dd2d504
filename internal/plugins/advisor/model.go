// Package advisor provides AI-backed farming advice: crop suggestions for
// a location/season/soil combination and crop identification from a photo.
package advisor

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// SuggestionRequest describes the growing conditions the farmer wants
// suggestions for.
type SuggestionRequest struct {
	Location string `json:"location"`
	Season   string `json:"season"`
	SoilType string `json:"soil_type"`
}

// Validate checks the suggestion request fields. Returns a
// validation.Errors map on failure.
func (r SuggestionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Location, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Season, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.SoilType, validation.Required, validation.Length(2, 60)),
	)
}

// SuggestionResponse is the list of crops suited to the requested
// conditions.
type SuggestionResponse struct {
	Crops []string `json:"crops"`
}

// IdentifyRequest carries a crop photo as a base64 data URI.
type IdentifyRequest struct {
	PhotoDataURI string `json:"photo_data_uri"`
}

// Validate checks that a photo was supplied. The data URI format itself
// is checked when the payload is decoded.
func (r IdentifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PhotoDataURI, validation.Required),
	)
}

// CropIdentification is the structured result of identifying a crop from
// a photo.
type CropIdentification struct {
	CropName               string `json:"crop_name"`
	EstimatedPrice         string `json:"estimated_price"`
	Description            string `json:"description"`
	GrowingConditions      string `json:"growing_conditions"`
	CommonPestsAndDiseases string `json:"common_pests_and_diseases"`
}

// validationMessages flattens a validation.Errors map into a sorted list
// of "field: message" strings.
func validationMessages(err error) []string {
	verrs, ok := err.(validation.Errors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for field, ferr := range verrs {
		msgs = append(msgs, field+": "+ferr.Error())
	}
	sort.Strings(msgs)
	return msgs
}

// normalizeKeyPart lowercases and collapses whitespace so that cache keys
// for "Pune" and " pune " coincide.
func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
