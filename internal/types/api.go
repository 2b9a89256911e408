package types

// Response is the envelope for acknowledgements and api.ErrorResponse errors.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ResearchPlacesRequest struct {
	Places   []Place `json:"places"`
	Region   string  `json:"region,omitempty"`
	UseCache *bool   `json:"use_cache,omitempty"`
}

type ResearchPlacesResponse struct {
	Region    string           `json:"region"`
	Knowledge []PlaceKnowledge `json:"knowledge"`
	// Names of the places that fell back to a low-confidence record.
	Degraded []string `json:"degraded"`
}
