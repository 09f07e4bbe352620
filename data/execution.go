package data

import "time"

// Visibility tells whether an input is revealed to the execution service or only committed to.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// InputRef is one entry of a request's input list. Data is the standard base64 transport
// form: the raw bytes for public inputs, the commitment for private ones.
type InputRef struct {
	Visibility Visibility `json:"visibility"`
	Data       string     `json:"data"`
}

type ExecutionConfig struct {
	VerifyInputHash bool   `json:"verify_input_hash"`
	InputHash       []byte `json:"input_hash,omitempty"`
	ForwardOutput   bool   `json:"forward_output"`
}

type AccountRef struct {
	Address  string `json:"address"`
	Writable bool   `json:"writable"`
}

// CallbackConfig says where and how the result should be delivered.
type CallbackConfig struct {
	TargetProgramID   string       `json:"target_program_id"`
	InstructionPrefix []byte       `json:"instruction_prefix"`
	ExtraAccounts     []AccountRef `json:"extra_accounts"`
}

// ExecutionRequest is one delegated computation, keyed by its handle.
type ExecutionRequest struct {
	Handle         string          `json:"handle"`
	ImageID        string          `json:"image_id"`
	Payer          string          `json:"payer"`
	Inputs         []InputRef      `json:"inputs"`
	Tip            uint64          `json:"tip"`
	ResourceBudget uint64          `json:"resource_budget"`
	Config         ExecutionConfig `json:"config"`
	Callback       *CallbackConfig `json:"callback,omitempty"`
	Status         RequestStatus   `json:"status"`
	TxHash         string          `json:"tx_hash,omitempty"`
	Output         string          `json:"output,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AuthenticatedPayload is the result of a successful callback verification.
type AuthenticatedPayload struct {
	ImageID          string
	Handle           string
	InputDigest      []byte
	CommittedOutputs []byte
}
