package model

// InsurancePlan is reference data describing a purchasable travel policy.
type InsurancePlan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PricePercent float64  `json:"pricePercent"`
	MinTripValue float64  `json:"minTripValue"`
	MaxTripValue float64  `json:"maxTripValue"`
	Benefits     []string `json:"benefits"`
	TermsURL     string   `json:"termsUrl"`
}

// InsurancePlanRequest is the request to create an insurance plan.
type InsurancePlanRequest struct {
	ID           string   `json:"id" validate:"required,max=64"`
	Name         string   `json:"name" validate:"required,max=256"`
	PricePercent float64  `json:"pricePercent" validate:"gte=0,lte=100"`
	MinTripValue float64  `json:"minTripValue" validate:"gte=0"`
	MaxTripValue float64  `json:"maxTripValue" validate:"gtefield=MinTripValue"`
	Benefits     []string `json:"benefits" validate:"dive,required"`
	TermsURL     string   `json:"termsUrl" validate:"omitempty,url"`
}
