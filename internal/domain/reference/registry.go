package reference

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// ErrUnknownGroup is returned when a group id has no profile.
var ErrUnknownGroup = errors.New("unknown group")

var defaultGroups = []models.GroupProfile{
	{ID: models.GroupPiglet, Name: "Piglets", RationPerKg: 0.05},
	{ID: models.GroupGrower, Name: "Growers", RationPerKg: 0.035},
	{ID: models.GroupPregnant, Name: "Pregnant Sows", RationPerKg: 0.02},
	{ID: models.GroupAdult, Name: "Adults", RationPerKg: 0.025},
	{ID: models.GroupQuarantine, Name: "Quarantine", RationPerKg: 0.015},
}

var defaultFeedTypes = []models.FeedType{
	{ID: "1", Name: "Starter Mix (A)", Protein: 18, Energy: 3200, CostPerKg: 0.85},
	{ID: "2", Name: "Grower Plus", Protein: 16, Energy: 3000, CostPerKg: 0.70},
	{ID: "3", Name: "Standard Maintenance", Protein: 14, Energy: 2800, CostPerKg: 0.60},
}

// Registry holds the immutable group and feed type tables.
type Registry struct {
	groups    []models.GroupProfile
	feedTypes []models.FeedType
}

type fileLayout struct {
	Groups    []models.GroupProfile `yaml:"groups"`
	FeedTypes []models.FeedType     `yaml:"feedTypes"`
}

// Default returns the compiled-in reference tables.
func Default() *Registry {
	return &Registry{
		groups:    append([]models.GroupProfile(nil), defaultGroups...),
		feedTypes: append([]models.FeedType(nil), defaultFeedTypes...),
	}
}

// Load reads reference tables from a YAML file. An empty path yields Default.
// Sections missing from the file keep their defaults.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file %s: %w", path, err)
	}

	return Parse(raw)
}

// Parse decodes YAML reference tables and validates them.
func Parse(raw []byte) (*Registry, error) {
	var layout fileLayout
	if err := yaml.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("decode reference tables: %w", err)
	}

	reg := Default()
	if len(layout.Groups) > 0 {
		reg.groups = layout.Groups
	}
	if len(layout.FeedTypes) > 0 {
		reg.feedTypes = layout.FeedTypes
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) validate() error {
	seenGroups := make(map[models.GroupID]bool, len(r.groups))
	for _, g := range r.groups {
		if _, err := models.ParseGroupID(string(g.ID)); err != nil {
			return err
		}
		if seenGroups[g.ID] {
			return fmt.Errorf("duplicate group profile %s", g.ID)
		}
		seenGroups[g.ID] = true
		if g.RationPerKg <= 0 {
			return fmt.Errorf("group %s: ration coefficient must be positive", g.ID)
		}
	}

	seenFeeds := make(map[string]bool, len(r.feedTypes))
	for _, f := range r.feedTypes {
		if f.ID == "" || f.Name == "" {
			return errors.New("feed type requires id and name")
		}
		if seenFeeds[f.ID] || seenFeeds[f.Name] {
			return fmt.Errorf("duplicate feed type %s", f.ID)
		}
		seenFeeds[f.ID], seenFeeds[f.Name] = true, true
		if f.CostPerKg < 0 {
			return fmt.Errorf("feed type %s: cost per kg must not be negative", f.Name)
		}
	}
	return nil
}

// Group returns the profile for id.
func (r *Registry) Group(id models.GroupID) (models.GroupProfile, error) {
	for _, g := range r.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return models.GroupProfile{}, fmt.Errorf("%w: %s", ErrUnknownGroup, id)
}

// Groups returns a copy of every group profile.
func (r *Registry) Groups() []models.GroupProfile {
	return append([]models.GroupProfile(nil), r.groups...)
}

// FeedTypes returns a copy of every feed type.
func (r *Registry) FeedTypes() []models.FeedType {
	return append([]models.FeedType(nil), r.feedTypes...)
}

// FeedType resolves a feed type by id or by case-insensitive name.
func (r *Registry) FeedType(idOrName string) (models.FeedType, bool) {
	key := strings.TrimSpace(idOrName)
	for _, f := range r.feedTypes {
		if f.ID == key || strings.EqualFold(f.Name, key) {
			return f, true
		}
	}
	return models.FeedType{}, false
}
