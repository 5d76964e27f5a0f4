package wikipedia

// PageAPIResponse is the formatversion=2 response of a page summary query.
type PageAPIResponse struct {
	Query PageQuery `json:"query"`
}

type PageQuery struct {
	Pages []Page `json:"pages"`
}

// Page is a single article. Missing is set when no article has the title.
type Page struct {
	PageID    int        `json:"pageid"`
	Title     string     `json:"title"`
	Missing   bool       `json:"missing,omitempty"`
	Extract   string     `json:"extract,omitempty"`
	Original  *Image     `json:"original,omitempty"`
	PageProps *PageProps `json:"pageprops,omitempty"`
}

type Image struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PageProps carries the disambiguation marker; the API sends an empty
// string value when the page is a disambiguation page.
type PageProps struct {
	Disambiguation *string `json:"disambiguation,omitempty"`
}

// Summary is the lead section and lead image of an article.
type Summary struct {
	Title    string
	Extract  string
	ImageURL string
}
