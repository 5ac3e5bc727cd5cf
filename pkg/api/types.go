package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port    int
	Bind    string
	APIKey  string
	DataDir string
}

// VarRequest is the body of a variable write
type VarRequest struct {
	Attributes uint32 `json:"attributes"`
	Data       string `json:"data"` // base64-encoded value
}

// VarResponse describes one stored variable
type VarResponse struct {
	Namespace  string `json:"namespace"`
	Name       string `json:"name"`
	Attributes uint32 `json:"attributes"`
	Size       int    `json:"size"`
	Data       string `json:"data,omitempty"` // base64-encoded value
}

// KnobResponse describes one resolved knob
type KnobResponse struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Size      int    `json:"size"`
	Source    string `json:"source"`
	Value     string `json:"value"` // hex-encoded resolved value
}
