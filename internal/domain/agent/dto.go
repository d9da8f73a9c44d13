// internal/domain/agent/dto.go
package agent

type CreateAgentRequest struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Description string  `json:"description" binding:"required,min=10"`
	CategoryID  int64   `json:"category_id" binding:"required"`
	Price       float64 `json:"price" binding:"required,gte=0"`
}

type UpdateAgentRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	CategoryID  *int64   `json:"category_id,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

type RejectAgentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListFilters narrows the public marketplace listing.
type ListFilters struct {
	CategoryID int64  `form:"category_id"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type ListResult struct {
	Agents   []Agent `json:"agents"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}
