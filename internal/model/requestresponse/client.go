package requestresponse

// UpdateProfileRequest : fields a customer may change on their own record
type UpdateProfileRequest struct {
	FirstName          *string `json:"first_name" validate:"omitempty,max=120"`
	LastName           *string `json:"last_name" validate:"omitempty,max=120"`
	Phone              *string `json:"phone" validate:"omitempty,max=40"`
	DestinationCountry *string `json:"destination_country" validate:"omitempty,max=80"`
	VisaType           *string `json:"visa_type" validate:"omitempty,max=80"`
	ApplicationType    *string `json:"application_type" validate:"omitempty,oneof=individual family"`
	FamilyMembersCount *int    `json:"family_members_count" validate:"omitempty,gte=0,lte=20"`
}

// AdminUpdateClientRequest : profile fields plus the ones only staff may set
type AdminUpdateClientRequest struct {
	UpdateProfileRequest
	Status *string `json:"status" validate:"omitempty,oneof=pending active completed inactive"`
	Notes  *string `json:"notes" validate:"omitempty,max=4000"`
}
