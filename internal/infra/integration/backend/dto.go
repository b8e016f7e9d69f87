package backend

// StatusResponse is the connection-status answer shared by all providers.
type StatusResponse struct {
	Connected bool `json:"connected"`
}

// IDsRequest is the body of the bulk deactivate and delete endpoints.
type IDsRequest struct {
	IDs []string `json:"ids"`
}
