package unsplash

// Photo is the subset of the Unsplash photo object the site renders.
type Photo struct {
	ID             string    `json:"id"`
	URLs           PhotoURLs `json:"urls"`
	AltDescription *string   `json:"alt_description"`
	Description    *string   `json:"description"`
	User           PhotoUser `json:"user"`
}

type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type PhotoUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// SearchResult is one page of /search/photos.
type SearchResult struct {
	Results    []Photo `json:"results"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}
