package zoho

type connectResponse struct {
	AuthURL string `json:"auth_url"`
}

// leadsResponse carries Zoho CRM lead records as the backend relays them,
// e.g. {"id": "...", "First_Name": "...", "Lead_Status": "...", "Created_Time": "..."}.
type leadsResponse struct {
	Leads []map[string]any `json:"leads"`
}
