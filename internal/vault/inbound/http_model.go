package inbound

// PutValueRequest carries the value to store under the addressed key.
type PutValueRequest struct {
	Value string `json:"value" example:"any opaque payload"`
}

// ProvisionRequest names the audience to provision a tenant for.
type ProvisionRequest struct {
	Audience string `json:"audience" example:"example.com"`
}

// RecordResponse is a stored value with its write metadata.
type RecordResponse struct {
	Key       string `json:"key" example:"preferences"`
	Value     string `json:"value" example:"any opaque payload"`
	Timestamp int64  `json:"timestamp" example:"1735689600000"`
	User      string `json:"user" example:"alice@example.com"`
	Bucket    string `json:"bucket" example:"example.com"`
}
