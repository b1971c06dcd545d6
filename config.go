package bigrow

import "time"

// Config defines the configuration for the connection.
type Config struct {
	// Endpoint is the URL of the BigRow gateway.
	Endpoint string `json:"endpoint"`
	// Namespace is the namespace path that scopes every table operation.
	//
	// This is optional and may be empty, in which case the default
	// namespace is used.
	Namespace string `json:"namespace"`
	// Retries is the number of times a request is retried after a
	// transport-level failure. Responses carrying error status codes are
	// never retried.
	Retries int `json:"retries"`
	// RetryPause is the pause between two attempts.
	RetryPause time.Duration `json:"retry_pause"`
}

const defaultNamespace = "default"

func (c *Config) namespace() string {
	if c.Namespace == "" {
		return defaultNamespace
	}
	return c.Namespace
}
