package models

import "fmt"

// GroupID identifies a management group (room or pen category).
type GroupID string

const (
	GroupPiglet     GroupID = "Piglet"
	GroupGrower     GroupID = "Grower"
	GroupPregnant   GroupID = "Pregnant"
	GroupAdult      GroupID = "Adult"
	GroupQuarantine GroupID = "Quarantine"
)

// Groups lists every group in registry order.
var Groups = []GroupID{GroupPiglet, GroupGrower, GroupPregnant, GroupAdult, GroupQuarantine}

// ParseGroupID converts raw text into a GroupID.
func ParseGroupID(raw string) (GroupID, error) {
	for _, g := range Groups {
		if string(g) == raw {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown group %q", raw)
}

// GroupProfile carries the static ration settings of a group.
type GroupProfile struct {
	ID GroupID `yaml:"id" json:"id"`
	// Name is the human readable label.
	Name string `yaml:"name" json:"name"`
	// RationPerKg is kg of feed required per kg of body weight per feeding.
	RationPerKg float64 `yaml:"rationPerKg" json:"rationPerKg"`
}

// FeedType describes a feed formulation and its price.
type FeedType struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Protein   float64 `yaml:"protein" json:"protein"`
	Energy    float64 `yaml:"energy" json:"energy"`
	CostPerKg float64 `yaml:"costPerKg" json:"costPerKg"`
}
