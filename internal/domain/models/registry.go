package models

// RegisterAnimalRequest captures the fields needed to add an animal.
type RegisterAnimalRequest struct {
	TagID      string  `json:"tagId" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Group      string  `json:"group"`
	Weight     float64 `json:"weight"`
	Sex        string  `json:"sex"`
	Breed      string  `json:"breed"`
	BirthDate  string  `json:"dob"`
	IsPregnant bool    `json:"isPregnant"`
}

// UpdateAnimalRequest carries optional registry edits. Nil fields are left untouched.
type UpdateAnimalRequest struct {
	Name       *string  `json:"name"`
	Group      *string  `json:"group"`
	Weight     *float64 `json:"weight"`
	Breed      *string  `json:"breed"`
	IsPregnant *bool    `json:"isPregnant"`
}

// AnimalFilter narrows registry listings.
type AnimalFilter struct {
	Search string
	Group  GroupID
	Status FeedStatus
}
