package model

// SearchSpec is the structured Open Library query produced by the model.
// All fields are strings because the model is prompted to emit string values;
// Limit stays a string until the search request is built.
type SearchSpec struct {
	QueryType  string `json:"query_type"`
	QueryValue string `json:"query_value"`
	Limit      string `json:"limit"`
}

// Document is a single Open Library search result. Title and AuthorName are
// optional in the upstream payload; defaults are applied at narration time.
type Document struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
}

// SearchResult is the subset of the Open Library search response we consume.
type SearchResult struct {
	NumFound int        `json:"numFound"`
	Docs     []Document `json:"docs"`
}
