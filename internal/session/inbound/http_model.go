package inbound

// StartSessionRequest carries the identity assertion and the audience the
// caller wants a session for.
type StartSessionRequest struct {
	Assertion string `json:"assertion" example:"eyJhb...~eyJhb..."`
	Audience  string `json:"audience" example:"example.com"`
}
