package dto

import (
	"github.com/soundsafari/xenocanto-dl/internal/model"
)

// Recording represents one recording object from the search API payload.
//
// Different records omit different keys, so every metadata field is a
// *string: a key absent from the payload stays nil after unmarshal, while a
// present-but-empty value (Latitude/Longitude are often "") becomes a
// pointer to the empty string. Converting through this schema is what
// guarantees every record carries the full canonical field set downstream.
type Recording struct {
	ID               string  `json:"id"`
	Genus            *string `json:"gen"`
	SpecificEpithet  *string `json:"sp"`
	Subspecies       *string `json:"ssp"`
	EnglishName      *string `json:"en"`
	Recordist        *string `json:"rec"`
	Country          *string `json:"cnt"`
	Locality         *string `json:"loc"`
	Latitude         *string `json:"lat"`
	Longitude        *string `json:"lng"`
	VocalizationType *string `json:"type"`
	AudioFile        *string `json:"file"`
	License          *string `json:"lic"`
	URL              *string `json:"url"`
	Quality          *string `json:"q"`
	Time             *string `json:"time"`
	Date             *string `json:"date"`
	Sono             *Sono   `json:"sono"`
}

// Sono holds the sonogram image URLs the API attaches to a recording.
type Sono struct {
	Small  *string `json:"small"`
	Medium *string `json:"med"`
	Large  *string `json:"large"`
	Full   *string `json:"full"`
}

// ToRecording converts the API record to a model.Recording. Present values
// pass through untouched, including empty strings; missing keys stay nil.
func (r *Recording) ToRecording() *model.Recording {
	rec := &model.Recording{
		ID:               r.ID,
		Genus:            r.Genus,
		SpecificEpithet:  r.SpecificEpithet,
		Subspecies:       r.Subspecies,
		EnglishName:      r.EnglishName,
		Recordist:        r.Recordist,
		Country:          r.Country,
		Locality:         r.Locality,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		VocalizationType: r.VocalizationType,
		AudioFile:        r.AudioFile,
		License:          r.License,
		URL:              r.URL,
		Quality:          r.Quality,
		Time:             r.Time,
		Date:             r.Date,
	}

	if r.Sono != nil {
		// Prefer the highest-resolution sonogram available.
		for _, u := range []*string{r.Sono.Full, r.Sono.Large, r.Sono.Medium, r.Sono.Small} {
			if u != nil && *u != "" {
				rec.SonogramURL = *u
				break
			}
		}
	}

	return rec
}
