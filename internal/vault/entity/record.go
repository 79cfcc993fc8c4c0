package entity

// Record is a stored value together with its write metadata.
type Record struct {
	// Key is the caller-facing key, never the hashed column name.
	Key string
	// Value is the stored payload.
	Value string
	// Timestamp is the backend write time in unix milliseconds.
	Timestamp int64
	// User is the owning user identifier.
	User string
	// Bucket is the normalized tenant the record lives under.
	Bucket string
}
