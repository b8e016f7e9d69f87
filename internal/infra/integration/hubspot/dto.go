package hubspot

type authorizeResponse struct {
	URL string `json:"url"`
}

// object is a HubSpot CRM v3 contact as the backend relays it.
type object struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Archived   bool           `json:"archived"`
}

type leadsResponse struct {
	Leads []object `json:"leads"`
}
