package types

// PaginationResponse echoes the applied pagination back to the caller
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
