package model

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/plant-care/internal/schedule"
)

// Plant categories.
const (
	CategorySucculent = "succulent"
	CategoryHerb      = "herb"
	CategoryFern      = "fern"
	CategoryFlowering = "flowering"
	CategoryTree      = "tree"
	CategoryShrub     = "shrub"
)

// Care levels, in increasing order of effort.
const (
	CareEasy      = "easy"
	CareModerate  = "moderate"
	CareDifficult = "difficult"
)

// Categories lists every known category in display order.
var Categories = []string{
	CategorySucculent, CategoryHerb, CategoryFern,
	CategoryFlowering, CategoryTree, CategoryShrub,
}

// CareLevels lists every known care level from least to most demanding.
var CareLevels = []string{CareEasy, CareModerate, CareDifficult}

// Plant is one tracked houseplant as exchanged with the plant collection API.
// Dates are calendar dates in YYYY-MM-DD form; NextWateringDate is empty when
// it cannot be derived.
type Plant struct {
	ID                string `json:"_id,omitempty" yaml:"id" db:"id"`
	PlantName         string `json:"plantName" yaml:"plant_name" db:"plant_name"`
	Category          string `json:"category" yaml:"category" db:"category"`
	Description       string `json:"description" yaml:"description" db:"description"`
	CareLevel         string `json:"careLevel" yaml:"care_level" db:"care_level"`
	WateringFrequency string `json:"wateringFrequency" yaml:"watering_frequency" db:"watering_frequency"`
	LastWateredDate   string `json:"lastWateredDate" yaml:"last_watered_date" db:"last_watered_date"`
	NextWateringDate  string `json:"nextWateringDate" yaml:"next_watering_date" db:"next_watering_date"`
	HealthStatus      string `json:"healthStatus" yaml:"health_status" db:"health_status"`
	OwnerName         string `json:"userName" yaml:"owner_name" db:"owner_name"`
	OwnerEmail        string `json:"userEmail" yaml:"owner_email" db:"owner_email"`
	ImageURL          string `json:"image" yaml:"image" db:"image_url"`

	// SyncedAt is when the local mirror last received this record.
	SyncedAt time.Time `json:"-" yaml:"-" db:"synced_at"`
}

// UnmarshalJSON accepts "id" as an alias for "_id".
func (p *Plant) UnmarshalJSON(data []byte) error {
	type plain Plant
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// Recompute derives NextWateringDate from the current last watered date and
// frequency. Callers editing either field recompute after every edit.
func (p *Plant) Recompute() {
	p.NextWateringDate = schedule.ComputeNextWateringDate(p.LastWateredDate, p.WateringFrequency)
}

// Normalize trims text fields and lower-cases enumerations.
func (p *Plant) Normalize() {
	p.PlantName = strings.TrimSpace(p.PlantName)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.CareLevel = strings.ToLower(strings.TrimSpace(p.CareLevel))
	p.WateringFrequency = strings.TrimSpace(p.WateringFrequency)
	p.LastWateredDate = strings.TrimSpace(p.LastWateredDate)
	p.HealthStatus = strings.TrimSpace(p.HealthStatus)
	p.OwnerEmail = strings.TrimSpace(p.OwnerEmail)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
}

// FieldError describes one invalid field. Err, when set, is the cause.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// ValidationError collects every invalid field of a record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid plant: " + strings.Join(parts, "; ")
}

// Unwrap exposes the field causes to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	var errs []error
	for _, f := range e.Fields {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the record at the API boundary.
func (p *Plant) Validate() error {
	ve := &ValidationError{}

	if p.PlantName == "" {
		ve.add("plantName", "required")
	}
	if !contains(Categories, p.Category) {
		ve.add("category", "must be one of %s", strings.Join(Categories, ", "))
	}
	if !contains(CareLevels, p.CareLevel) {
		ve.add("careLevel", "must be one of %s", strings.Join(CareLevels, ", "))
	}
	if p.WateringFrequency == "" {
		ve.add("wateringFrequency", "required")
	}
	if _, err := schedule.ParseDate(p.LastWateredDate); err != nil {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   "lastWateredDate",
			Message: "must be a date in YYYY-MM-DD form",
			Err:     err,
		})
	}
	if p.HealthStatus == "" {
		ve.add("healthStatus", "required")
	}
	if p.ImageURL != "" {
		u, err := url.Parse(p.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			ve.add("image", "must be an absolute http(s) URL")
		}
	}
	if p.OwnerEmail != "" {
		if _, err := mail.ParseAddress(p.OwnerEmail); err != nil {
			ve.add("userEmail", "must be a valid email address")
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// PrepareForSubmission normalizes the record, recomputes the next watering
// date and canonicalizes the last watered date before validation. A bad
// last watered date yields a *ValidationError wrapping the
// *schedule.DateFormatError.
func (p *Plant) PrepareForSubmission() error {
	p.Normalize()
	p.Recompute()
	if d, err := schedule.NormalizeDateForSubmission(p.LastWateredDate); err == nil {
		p.LastWateredDate = d
	}
	return p.Validate()
}

// IsOwnedBy reports whether email owns the plant, ignoring case.
func (p Plant) IsOwnedBy(email string) bool {
	return email != "" && strings.EqualFold(p.OwnerEmail, email)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
