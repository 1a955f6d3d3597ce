// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Conference identifies one QM conference edition on the Indico server.
type Conference struct {
	// Year labels the edition (e.g. "2019"). It names the output file.
	Year string `json:"year" yaml:"year"`

	// IndicoID is the Indico event id (e.g. "773831").
	IndicoID string `json:"indico_id" yaml:"indico_id"`
}

// Label returns the short name used in progress output, e.g. "QM2019".
func (c Conference) Label() string {
	return "QM" + c.Year
}

// Metadata is the provenance record stored under the "metadata" key of
// every cached payload.
type Metadata struct {
	Year     string `json:"year"`
	IndicoID string `json:"indico_id"`

	// DownloadDate is the ISO-8601 (RFC 3339) time of the fetch.
	DownloadDate string `json:"download_date"`
}
