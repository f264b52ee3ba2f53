package googlebooks

// SearchResult is one catalog hit in the shape the rest of the bot consumes.
// Only the fields the core uses are mapped from the volumes response.
type SearchResult struct {
	CatalogID     string `json:"catalog_id"`
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	ISBN13        string `json:"isbn13,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
}

// volumesResponse mirrors the subset of the Google Books volumes payload we
// read.
type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	PublishedDate       string               `json:"publishedDate"` // "1965" or "1965-08-01"
	PageCount           int                  `json:"pageCount"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
}

type industryIdentifier struct {
	Type       string `json:"type"` // "ISBN_10", "ISBN_13", ...
	Identifier string `json:"identifier"`
}
