package api

// Response is the JSON envelope for successful API responses
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// List wraps a collection and its length in a success envelope
func List(data interface{}, count int) Response {
	return Response{Status: "success", Data: data, Count: &count}
}
