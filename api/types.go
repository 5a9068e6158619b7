package api

// RootResponse is the body of GET /
type RootResponse struct {
	Message string `json:"message"`
}
