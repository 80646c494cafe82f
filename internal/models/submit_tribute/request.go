package models

type SubmitTributeRequest struct {
	Author       string `json:"author" binding:"required,max=100"`
	Message      string `json:"message" binding:"required,min=10,max=1000"`
	Relationship string `json:"relationship" binding:"required,max=100"`
	MemorialID   string `json:"memorialId"`
}
