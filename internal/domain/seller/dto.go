// internal/domain/seller/dto.go
package seller

type ApplyRequest struct {
	CompanyName string `json:"company_name" binding:"required,min=2"`
	Pitch       string `json:"pitch" binding:"required,min=20"`
}

type ReviewApplicationRequest struct {
	Note string `json:"note"`
}
