package catalog

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dizabanik/droll/internal/errors"
)

type mockEquipmentSource struct {
	mock.Mock
}

func (m *mockEquipmentSource) GetEquipment(key string) (dnd5e.EquipmentInterface, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(dnd5e.EquipmentInterface), args.Error(1)
}

func TestGetWeapon(t *testing.T) {
	t.Run("finesse melee weapon", func(t *testing.T) {
		src := new(mockEquipmentSource)
		c := &client{equipment: src}

		src.On("GetEquipment", "rapier").Return(&entities.Weapon{
			Key:         "rapier",
			Name:        "Rapier",
			WeaponRange: "Melee",
			Damage:      &entities.Damage{DamageDice: "1d8", DamageType: &entities.ReferenceItem{Name: "Piercing"}},
			Properties:  []*entities.ReferenceItem{{Name: "Finesse"}},
		}, nil)

		weapon, err := c.GetWeapon(context.Background(), "Rapier")
		require.NoError(t, err)
		assert.Equal(t, &WeaponData{
			ID:         "rapier",
			Name:       "Rapier",
			DamageDice: "1d8",
			DamageType: "piercing",
			Finesse:    true,
		}, weapon)
		src.AssertExpectations(t)
	})

	t.Run("ranged weapon", func(t *testing.T) {
		src := new(mockEquipmentSource)
		c := &client{equipment: src}

		src.On("GetEquipment", "light-crossbow").Return(&entities.Weapon{
			Key:         "light-crossbow",
			Name:        "Crossbow, light",
			WeaponRange: "Ranged",
			Damage:      &entities.Damage{DamageDice: "1d8", DamageType: &entities.ReferenceItem{Name: "Piercing"}},
		}, nil)

		weapon, err := c.GetWeapon(context.Background(), "WEAPON_LIGHT_CROSSBOW")
		require.NoError(t, err)
		assert.True(t, weapon.Ranged)
		assert.False(t, weapon.Finesse)
	})

	t.Run("not a weapon", func(t *testing.T) {
		src := new(mockEquipmentSource)
		c := &client{equipment: src}

		src.On("GetEquipment", "shield").Return(&entities.Equipment{Key: "shield", Name: "Shield"}, nil)

		_, err := c.GetWeapon(context.Background(), "shield")
		assert.True(t, errors.IsInvalidArgument(err))
	})

	t.Run("api error", func(t *testing.T) {
		src := new(mockEquipmentSource)
		c := &client{equipment: src}

		src.On("GetEquipment", "club").Return(nil, stderrors.New("connection refused"))

		_, err := c.GetWeapon(context.Background(), "club")
		assert.True(t, errors.IsUnavailable(err))
		assert.Contains(t, err.Error(), "failed to get equipment club")
	})

	t.Run("missing id", func(t *testing.T) {
		c := &client{equipment: new(mockEquipmentSource)}
		_, err := c.GetWeapon(context.Background(), "  ")
		assert.True(t, errors.IsInvalidArgument(err))
	})
}

func TestToAPIKey(t *testing.T) {
	assert.Equal(t, "longsword", toAPIKey("Longsword"))
	assert.Equal(t, "light-crossbow", toAPIKey("WEAPON_LIGHT_CROSSBOW"))
	assert.Equal(t, "hand-crossbow", toAPIKey("hand crossbow"))
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.NotZero(t, cfg.HTTPTimeout)
	assert.NotZero(t, cfg.CacheTTL)
}
