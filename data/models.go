package data

type JobRequest struct {
	JobID string      `json:"id"`
	Data  RequestData `json:"data"`
}

type CallbackRequest struct {
	JobID string       `json:"id"`
	Data  CallbackData `json:"data"`
}

type JobResponse struct {
	JobRunID   string      `json:"jobRunID"`
	Data       interface{} `json:"data"`
	Result     interface{} `json:"result"`
	StatusCode int         `json:"statusCode"`
	Error      string      `json:"error,omitempty"`
}

// RequestData carries an execution request. Empty or nil fields fall back to the
// configured execution defaults. Input is a single text input; Inputs carries any number
// of binary inputs and cannot be combined with it.
type RequestData struct {
	Payer           string      `json:"payer"`
	ImageID         string      `json:"image_id"`
	Input           string      `json:"input"`
	Private         bool        `json:"private"`
	Inputs          []InputData `json:"inputs"`
	Tip             *uint64     `json:"tip"`
	ResourceBudget  *uint64     `json:"resource_budget"`
	VerifyInputHash *bool       `json:"verify_input_hash"`
	InputHash       string      `json:"input_hash"`
	ForwardOutput   *bool       `json:"forward_output"`
}

// InputData is one request input. Data is standard base64.
type InputData struct {
	Data    string `json:"data"`
	Private bool   `json:"private"`
}

// CallbackData is what the execution service posts back. Payload is standard base64.
type CallbackData struct {
	ImageID  string   `json:"image_id"`
	Handle   string   `json:"handle"`
	Accounts []string `json:"accounts"`
	Payload  string   `json:"payload"`
}
