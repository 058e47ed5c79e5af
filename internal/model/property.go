package model

// Property is a listing offered by a host.
type Property struct {
	ID            int64    `json:"id"`
	HostID        int64    `json:"hostId"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	PricePerNight float64  `json:"pricePerNight"`
	Rating        float64  `json:"rating"`
	Thumbnail     string   `json:"thumbnail"`
	Images        []string `json:"images"`
	Description   string   `json:"description"`
	Amenities     []string `json:"amenities"`
	PropertyInfo  string   `json:"propertyInfo"`
	DataAIHint    string   `json:"data_ai_hint,omitempty"`
}

// PropertyRequest creates or replaces the editable fields of a property.
type PropertyRequest struct {
	HostID        int64    `json:"hostId" validate:"required,gt=0"`
	Title         string   `json:"title" validate:"required,max=256"`
	Location      string   `json:"location" validate:"required,max=256"`
	PricePerNight float64  `json:"pricePerNight" validate:"gte=0"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	Thumbnail     string   `json:"thumbnail"`
	Images        []string `json:"images"`
	Description   string   `json:"description" validate:"required"`
	Amenities     []string `json:"amenities" validate:"dive,required"`
	PropertyInfo  string   `json:"propertyInfo"`
	DataAIHint    string   `json:"data_ai_hint"`
}

// UpdatePropertyRequest replaces the host-editable fields of a property.
type UpdatePropertyRequest struct {
	Title         string   `json:"title" validate:"required,max=256"`
	Location      string   `json:"location" validate:"required,max=256"`
	PricePerNight float64  `json:"pricePerNight" validate:"gte=0"`
	Description   string   `json:"description" validate:"required"`
	Amenities     []string `json:"amenities" validate:"dive,required"`
	PropertyInfo  string   `json:"propertyInfo"`
}

// HostInfo is the contact shown to guests for a property.
type HostInfo struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}
