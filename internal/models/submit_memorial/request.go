package models

// SubmitMemorialRequest is bound from a multipart form. The optional image
// part is read separately.
type SubmitMemorialRequest struct {
	Name      string `form:"name" binding:"required,max=100"`
	Role      string `form:"role" binding:"required,max=100"`
	Unit      string `form:"unit" binding:"required,max=100"`
	Status    string `form:"status" binding:"required,oneof=fallen serving gallantry"`
	BirthDate string `form:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	DeathDate string `form:"deathDate" binding:"omitempty,datetime=2006-01-02"`
	Biography string `form:"biography" binding:"required,trimmed_min=10,max=2000"`
}
