// Package catalog looks up weapons in the D&D 5e SRD so they can be imported
// as roll chain items
package catalog

//go:generate mockgen -destination=mock/mock_client.go -package=catalogmock github.com/Dizabanik/droll/internal/clients/catalog Client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/Dizabanik/droll/internal/errors"
)

const (
	// DefaultBaseURL is the public SRD API
	DefaultBaseURL = "https://www.dnd5eapi.co/api/2014/"

	propertyFinesse = "finesse"
	rangeRanged     = "ranged"
)

// WeaponData is the part of an SRD weapon a roll chain needs
type WeaponData struct {
	ID         string
	Name       string
	DamageDice string
	DamageType string
	Finesse    bool
	Ranged     bool
}

// Client fetches weapons from the catalog
type Client interface {
	GetWeapon(ctx context.Context, weaponID string) (*WeaponData, error)
}

// equipmentSource is the slice of the dnd5e-api client this package uses
type equipmentSource interface {
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
}

// Config contains configuration options for the catalog client
type Config struct {
	// BaseURL defaults to DefaultBaseURL
	BaseURL string
	// HTTPTimeout defaults to 30 seconds
	HTTPTimeout time.Duration
	// CacheTTL defaults to 24 hours
	CacheTTL time.Duration
}

// Validate sets defaults for unset fields
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	vb := errors.NewValidationBuilder()
	if cfg.HTTPTimeout < 0 {
		vb.Field("HTTPTimeout", "must not be negative")
	}
	if cfg.CacheTTL < 0 {
		vb.Field("CacheTTL", "must not be negative")
	}
	return vb.Build()
}

type client struct {
	equipment equipmentSource
}

// New creates a catalog client backed by a cached dnd5e-api client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return &client{equipment: dnd5e.NewCachedClient(base, cfg.CacheTTL)}, nil
}

// toAPIKey turns "Long Sword" or "WEAPON_LONGSWORD" style ids into api keys
func toAPIKey(id string) string {
	key := strings.ToLower(strings.TrimSpace(id))
	key = strings.TrimPrefix(key, "weapon_")
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	return key
}

func (c *client) GetWeapon(_ context.Context, weaponID string) (*WeaponData, error) {
	if strings.TrimSpace(weaponID) == "" {
		return nil, errors.InvalidArgument("weapon id is required")
	}

	key := toAPIKey(weaponID)
	slog.Info("Calling D&D 5e API to get weapon", "weapon", weaponID, "api", key)

	equipment, err := c.equipment.GetEquipment(key)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get equipment "+key)
	}
	if equipment == nil {
		return nil, errors.NotFoundf("equipment %s not found", key)
	}

	weapon, ok := equipment.(*entities.Weapon)
	if !ok {
		return nil, errors.InvalidArgumentf("%s is %s, not a weapon", key, equipment.GetType())
	}
	return convertWeapon(weapon), nil
}

func convertWeapon(w *entities.Weapon) *WeaponData {
	data := &WeaponData{
		ID:     w.Key,
		Name:   w.Name,
		Ranged: strings.EqualFold(w.WeaponRange, rangeRanged),
	}
	if w.Damage != nil {
		data.DamageDice = w.Damage.DamageDice
		if w.Damage.DamageType != nil {
			data.DamageType = strings.ToLower(w.Damage.DamageType.Name)
		}
	}
	for _, prop := range w.Properties {
		if prop != nil && strings.EqualFold(prop.Name, propertyFinesse) {
			data.Finesse = true
		}
	}
	return data
}
