package dataset

// Resource is one downloadable yearly CSV from the catalog.
type Resource struct {
	URL  string
	Name string
}

// catalogResponse mirrors the data.gov.tw v2 dataset API payload; only the
// distribution list is of interest.
type catalogResponse struct {
	Result *catalogResult `json:"result"`
}

type catalogResult struct {
	Distribution []distribution `json:"distribution"`
}

type distribution struct {
	ResourceFormat      string `json:"resourceFormat"`
	ResourceDownloadURL string `json:"resourceDownloadUrl"`
	ResourceDescription string `json:"resourceDescription"`
}
