package requestresponse

// CategoryRequest : admin create/update of a category
type CategoryRequest struct {
	Name         string `json:"name" validate:"required,max=120" example:"Pasaporte"`
	Description  string `json:"description" validate:"max=500" example:"Valid passport"`
	IsRequired   *bool  `json:"is_required" example:"true"`
	DisplayOrder int    `json:"display_order" validate:"gte=0" example:"1"`
	IsActive     *bool  `json:"is_active" example:"true"`
}
