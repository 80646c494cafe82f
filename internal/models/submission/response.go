package models

type SubmissionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SubmissionErrorResponse is returned when the content store rejects a write.
type SubmissionErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Code    string `json:"code"`
}
