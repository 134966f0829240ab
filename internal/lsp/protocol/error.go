package protocol

type LspError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewLspError(message string, code string) *LspError {
	return &LspError{
		Code:    code,
		Message: message,
	}
}
