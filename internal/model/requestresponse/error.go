package requestresponse

// ErrorResponse : body of every failed request
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code" example:"NOT_FOUND"`
		Message string `json:"message" example:"resource not found"`
		Status  int    `json:"status" example:"404"`
	} `json:"error"`
}
