package models

import (
	"fmt"
	"time"
)

// Sex enumerates the biological sex recorded in the registry.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Valid reports whether s is one of the declared values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// FeedStatus is the nutritional status derived from the latest feeding.
type FeedStatus string

const (
	StatusPending  FeedStatus = "Pending"
	StatusOK       FeedStatus = "OK"
	StatusUnderfed FeedStatus = "Underfed"
	StatusMissed   FeedStatus = "Missed"
)

// Statuses lists every status in display order.
var Statuses = []FeedStatus{StatusPending, StatusOK, StatusUnderfed, StatusMissed}

// ParseFeedStatus converts raw text into a FeedStatus.
func ParseFeedStatus(raw string) (FeedStatus, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown feed status %q", raw)
}

// WeightPoint is one entry of an animal's weight history.
type WeightPoint struct {
	Date  time.Time `bson:"date" json:"date"`
	Value float64   `bson:"value" json:"value"`
}

// Animal is a single registered pig.
type Animal struct {
	ID            string        `bson:"id" json:"id"`
	TagID         string        `bson:"tag_id" json:"tagId"`
	Name          string        `bson:"name" json:"name"`
	Group         GroupID       `bson:"group" json:"group"`
	Weight        float64       `bson:"weight" json:"weight"`
	WeightHistory []WeightPoint `bson:"weight_history" json:"weightHistory"`
	Sex           Sex           `bson:"sex" json:"sex"`
	Breed         string        `bson:"breed" json:"breed"`
	BirthDate     string        `bson:"dob" json:"dob"`
	IsPregnant    bool          `bson:"is_pregnant" json:"isPregnant"`
	PhotoURL      string        `bson:"photo_url" json:"photoUrl"`
	LastIntakeKg  float64       `bson:"last_intake_kg" json:"lastIntakeKg"`
	Status        FeedStatus    `bson:"status" json:"status"`
}
