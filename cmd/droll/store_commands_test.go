package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/Dizabanik/droll/internal/clients/dicesource"
	"github.com/Dizabanik/droll/internal/config"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
	rollmock "github.com/Dizabanik/droll/internal/orchestrators/roll/mock"
)

type StoreCommandsTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *rollmock.MockService
}

func TestStoreCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(StoreCommandsTestSuite))
}

func (s *StoreCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = rollmock.NewMockService(s.ctrl)

	openRollService = func(context.Context, *config.Config, dicesource.Source) (roll.Service, func(), error) {
		return s.service, func() {}, nil
	}
}

func (s *StoreCommandsTestSuite) TearDownTest() {
	openRollService = newRollService
	s.ctrl.Finish()
}

func (s *StoreCommandsTestSuite) TestItemList() {
	s.service.EXPECT().
		ListItems(gomock.Any(), &roll.ListItemsInput{OwnerID: "char_1"}).
		Return(&roll.ListItemsOutput{Items: []*rollentity.Item{
			{ID: "sword", Name: "Sword", Chains: []*rollentity.Chain{{ID: "attack"}}},
		}}, nil)

	out, _, err := execute(s.T(), "item", "list", "char_1")
	s.Require().NoError(err)
	s.Contains(out, "sword")
	s.Contains(out, "attack")
}

func (s *StoreCommandsTestSuite) TestItemShow() {
	s.service.EXPECT().
		GetItem(gomock.Any(), &roll.GetItemInput{ItemID: "sword"}).
		Return(&roll.GetItemOutput{Item: &rollentity.Item{
			ID:     "sword",
			Name:   "Sword",
			Chains: []*rollentity.Chain{{ID: "attack", Name: "Attack"}},
		}}, nil)

	out, _, err := execute(s.T(), "item", "show", "sword")
	s.Require().NoError(err)
	s.Contains(out, "id: sword")
	s.Contains(out, "name: Attack")
}

func (s *StoreCommandsTestSuite) TestItemDeleteNotFound() {
	s.service.EXPECT().
		DeleteItem(gomock.Any(), &roll.DeleteItemInput{ItemID: "ghost"}).
		Return(nil, errors.NotFound("item ghost not found"))

	_, _, err := execute(s.T(), "item", "delete", "ghost")
	s.True(errors.IsNotFound(err))
}

func (s *StoreCommandsTestSuite) TestItemAddPrintsFieldErrors() {
	path := writeFile(s.T(), "broken.yaml", brokenSword)

	vb := errors.NewValidationBuilder()
	vb.Field("chains[0].steps[0].condition.step", `must reference an earlier step, got "later"`)
	s.service.EXPECT().
		CreateItem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *roll.CreateItemInput) (*roll.CreateItemOutput, error) {
			s.Equal("char_9", input.Item.OwnerID)
			return nil, vb.Build()
		})

	_, stderr, err := execute(s.T(), "item", "add", path, "--owner", "char_9")
	s.True(errors.IsInvalidArgument(err))
	s.Contains(stderr, "chains[0].steps[0].condition.step")
}

func (s *StoreCommandsTestSuite) TestStatsPut() {
	path := writeFile(s.T(), "hero.yaml", "name: Aria\nattributes:\n  strength: 16\n")

	s.service.EXPECT().
		PutStats(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *roll.PutStatsInput) (*roll.PutStatsOutput, error) {
			s.Equal("char_1", input.Sheet.CharacterID)
			s.Equal(16, input.Sheet.Attributes["strength"])
			return &roll.PutStatsOutput{Sheet: input.Sheet}, nil
		})

	out, _, err := execute(s.T(), "stats", "put", path, "--character", "char_1")
	s.Require().NoError(err)
	s.Contains(out, "Stored stats for char_1")
}

func (s *StoreCommandsTestSuite) TestHistory() {
	s.service.EXPECT().
		ListHistory(gomock.Any(), &roll.ListHistoryInput{CharacterID: "char_1", Limit: 3}).
		Return(&roll.ListHistoryOutput{Results: []*rollentity.ChainResult{{
			ItemID:     "sword",
			ChainID:    "attack",
			GrandTotal: 9,
			RolledAt:   time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		}}}, nil)

	out, _, err := execute(s.T(), "history", "char_1", "--limit", "3")
	s.Require().NoError(err)
	s.Contains(out, "sword")
	s.Contains(out, "2025-07-01 12:00:00")
}

func (s *StoreCommandsTestSuite) TestHistoryEmpty() {
	s.service.EXPECT().
		ListHistory(gomock.Any(), gomock.Any()).
		Return(&roll.ListHistoryOutput{}, nil)

	out, _, err := execute(s.T(), "history", "char_2")
	s.Require().NoError(err)
	s.Contains(out, "No rolls for char_2")
}

// TestStoredItemRoundTrip runs the store commands against an in-memory Redis
func TestStoredItemRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("DROLL_REDIS_ADDR", mr.Addr())

	path := writeFile(t, "sword.yaml", sword)

	out, _, err := execute(t, "item", "add", path, "--owner", "char_1")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored Sword as sword")

	out, _, err = execute(t, "item", "roll", "sword", "--character", "char_1", "--var", "target_ac=0")
	require.NoError(t, err)
	assert.Contains(t, out, "Sword: Attack")
	assert.Contains(t, out, "Total:")

	out, _, err = execute(t, "history", "char_1")
	require.NoError(t, err)
	assert.Contains(t, out, "sword")
	assert.Contains(t, out, "attack")

	out, _, err = execute(t, "item", "list", "char_1")
	require.NoError(t, err)
	assert.Contains(t, out, "Sword")

	_, _, err = execute(t, "item", "delete", "sword")
	require.NoError(t, err)

	_, _, err = execute(t, "item", "roll", "sword")
	assert.True(t, errors.IsNotFound(err))
}
