package models

type SubmitGuestbookRequest struct {
	Author   string `json:"author" binding:"required,max=100"`
	Message  string `json:"message" binding:"required,min=10,max=1000"`
	Location string `json:"location" binding:"max=100"`
}
