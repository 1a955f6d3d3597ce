package types

import "time"

// HTTPConfig holds HTTP settings used by the Indico client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. No retries are attempted.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "qm-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// BaseURL is the Indico server root (e.g. "https://indico.cern.ch").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIToken is an optional Indico API token sent as a Bearer credential.
	APIToken string `json:"-" yaml:"-"`
}

// FetchConfig holds settings for a fetch run.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DataDir is the output directory holding QM<year>_data.json files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ListFile is the path of the conference list.
	ListFile string `json:"list_file" yaml:"list_file"`
}
