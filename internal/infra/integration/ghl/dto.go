package ghl

type connectRequest struct {
	APIKey     string `json:"apiKey"`
	LocationID string `json:"locationId"`
}

// leadsResponse carries GHL contacts. Older locations return contacts
// without an id, in which case the lead is identified by position.
type leadsResponse struct {
	Leads []map[string]any `json:"leads"`
}
