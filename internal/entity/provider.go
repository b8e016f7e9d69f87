package entity

import (
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderZoho    Provider = "zoho"
	ProviderHubSpot Provider = "hubspot"
	ProviderGHL     Provider = "ghl"
)

// ParseProvider accepts the provider name as it appears in URLs and config.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderZoho:
		return ProviderZoho, nil
	case ProviderHubSpot:
		return ProviderHubSpot, nil
	case ProviderGHL:
		return ProviderGHL, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

type AuthKind string

const (
	AuthOAuth  AuthKind = "oauth"
	AuthAPIKey AuthKind = "api_key"
)

// ProviderProfile describes how a provider's loosely-typed lead records are
// read: which fields identify, search, timestamp and label a lead.
type ProviderProfile struct {
	Provider            Provider
	Auth                AuthKind
	RequiredCredentials []string
	IDField             string
	NameFields          []string
	EmailField          string
	PhoneField          string
	StatusField         string
	TimestampField      string
	DateFilter          bool
}

// SearchFields is the concatenation order used by the text filter.
func (p ProviderProfile) SearchFields() []string {
	fields := make([]string, 0, len(p.NameFields)+2)
	fields = append(fields, p.NameFields...)
	return append(fields, p.EmailField, p.PhoneField)
}

var profiles = map[Provider]ProviderProfile{
	ProviderZoho: {
		Provider:       ProviderZoho,
		Auth:           AuthOAuth,
		IDField:        "id",
		NameFields:     []string{"First_Name", "Last_Name"},
		EmailField:     "Email",
		PhoneField:     "Phone",
		StatusField:    "Lead_Status",
		TimestampField: "Created_Time",
		DateFilter:     true,
	},
	ProviderHubSpot: {
		Provider:       ProviderHubSpot,
		Auth:           AuthOAuth,
		IDField:        "id",
		NameFields:     []string{"firstname", "lastname"},
		EmailField:     "email",
		PhoneField:     "phone",
		StatusField:    "hs_lead_status",
		TimestampField: "createdate",
		DateFilter:     true,
	},
	ProviderGHL: {
		Provider:            ProviderGHL,
		Auth:                AuthAPIKey,
		RequiredCredentials: []string{"api_key", "location_id"},
		IDField:             "id",
		NameFields:          []string{"firstName", "lastName"},
		EmailField:          "email",
		PhoneField:          "phone",
		StatusField:         "type",
		TimestampField:      "dateAdded",
		DateFilter:          false,
	},
}

func ProfileFor(p Provider) ProviderProfile {
	return profiles[p]
}
