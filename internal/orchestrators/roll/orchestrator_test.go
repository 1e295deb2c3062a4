package roll_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/Dizabanik/droll/internal/clients/catalog"
	catalogmock "github.com/Dizabanik/droll/internal/clients/catalog/mock"
	dicesourcemock "github.com/Dizabanik/droll/internal/clients/dicesource/mock"
	"github.com/Dizabanik/droll/internal/engine/chain"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	"github.com/Dizabanik/droll/internal/repositories/history"
	historymock "github.com/Dizabanik/droll/internal/repositories/history/mock"
	"github.com/Dizabanik/droll/internal/repositories/item"
	itemmock "github.com/Dizabanik/droll/internal/repositories/item/mock"
	"github.com/Dizabanik/droll/internal/repositories/stats"
	statsmock "github.com/Dizabanik/droll/internal/repositories/stats/mock"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockItems   *itemmock.MockRepository
	mockStats   *statsmock.MockRepository
	mockHistory *historymock.MockRepository
	mockDice    *dicesourcemock.MockSource
	mockCatalog *catalogmock.MockClient
	bus         events.EventBus
	clock       *clock.Fixed
	svc         roll.Service
	ctx         context.Context

	// faces maps die size to the face every die of that size shows
	faces     map[int]int
	published []events.Event
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockItems = itemmock.NewMockRepository(s.ctrl)
	s.mockStats = statsmock.NewMockRepository(s.ctrl)
	s.mockHistory = historymock.NewMockRepository(s.ctrl)
	s.mockDice = dicesourcemock.NewMockSource(s.ctrl)
	s.mockCatalog = catalogmock.NewMockClient(s.ctrl)
	s.clock = &clock.Fixed{At: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	s.ctx = context.Background()
	s.faces = map[int]int{20: 12, 8: 6, 6: 4}
	s.published = nil

	s.bus = events.NewBus()
	s.bus.SubscribeFunc(roll.EventChainRolled, 0, func(_ context.Context, e events.Event) error {
		s.published = append(s.published, e)
		return nil
	})

	s.mockDice.EXPECT().
		Roll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, requests []rollentity.DieRequest) (map[string]int, error) {
			values := make(map[string]int, len(requests))
			for _, req := range requests {
				values[req.ID] = s.faces[req.Sides]
			}
			return values, nil
		}).
		AnyTimes()

	runner, err := chain.New(&chain.Config{IDs: idgen.NewSequential("die")})
	s.Require().NoError(err)

	svc, err := roll.NewOrchestrator(&roll.Config{
		ItemRepo:    s.mockItems,
		StatsRepo:   s.mockStats,
		HistoryRepo: s.mockHistory,
		Runner:      runner,
		DiceSource:  s.mockDice,
		ItemIDs:     idgen.NewSequential("item"),
		RollIDs:     idgen.NewSequential("roll"),
		Clock:       s.clock,
		Catalog:     s.mockCatalog,
		EventBus:    s.bus,
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) longsword() *rollentity.Item {
	return &rollentity.Item{
		ID:      "item_sword",
		OwnerID: "char_1",
		Name:    "Longsword",
		Chains: []*rollentity.Chain{{
			ID:   "attack",
			Name: "Attack",
			Variables: []*rollentity.Variable{
				{ID: "target_ac", Name: "Target AC", DefaultValue: 15},
			},
			Steps: []*rollentity.Step{
				{ID: "attack", Label: "Attack", Kind: rollentity.StepKindStandard, Formula: "1d20+5"},
				{
					ID:             "damage",
					Label:          "Damage",
					Kind:           rollentity.StepKindStandard,
					Formula:        "1d8+3",
					DamageCategory: "slashing",
					IncludeInTotal: true,
					Condition: &rollentity.Condition{
						StepID:              "attack",
						Operator:            rollentity.OperatorGreaterEqual,
						ThresholdVariableID: "target_ac",
					},
				},
			},
		}},
	}
}

func (s *OrchestratorTestSuite) expectItem(it *rollentity.Item) {
	s.mockItems.EXPECT().
		Get(s.ctx, item.GetInput{ID: it.ID}).
		Return(&item.GetOutput{Item: it}, nil)
}

func (s *OrchestratorTestSuite) TestRollChain_HitRecordsAndPublishes() {
	sword := s.longsword()
	s.expectItem(sword)
	s.mockStats.EXPECT().
		Get(s.ctx, stats.GetInput{CharacterID: "char_1"}).
		Return(nil, errors.NotFound("stats for character char_1 not found"))

	var recorded *rollentity.ChainResult
	s.mockHistory.EXPECT().
		Append(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input history.AppendInput) (*history.AppendOutput, error) {
			s.Equal("char_1", input.CharacterID)
			recorded = input.Result
			return &history.AppendOutput{}, nil
		})

	out, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{
		ItemID:      "item_sword",
		ChainID:     "attack",
		CharacterID: "char_1",
	})
	s.Require().NoError(err)

	result := out.Result
	s.Equal("roll_1", result.RollID)
	s.Equal("item_sword", result.ItemID)
	s.Equal("char_1", result.CharacterID)
	s.Equal(s.clock.At, result.RolledAt)
	s.Require().Len(result.StepResults, 2)
	s.Equal(17, result.StepResults[0].Total)
	s.False(result.StepResults[1].Skipped)
	s.Equal(9, result.StepResults[1].Total)
	s.Equal(9, result.GrandTotal)
	s.Equal([]rollentity.CategoryTotal{{Category: "slashing", Total: 9}}, result.Breakdown)
	s.Same(result, recorded)

	s.Require().Len(s.published, 1)
	s.Equal(roll.EventChainRolled, s.published[0].Type())
	s.Equal("char_1", s.published[0].Source().GetID())
	s.Equal("item_sword", s.published[0].Target().GetID())
}

func (s *OrchestratorTestSuite) TestRollChain_VariablesAndSheetOverride() {
	s.expectItem(s.longsword())
	s.mockHistory.EXPECT().Append(s.ctx, gomock.Any()).Return(&history.AppendOutput{}, nil)

	out, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{
		ItemID:      "item_sword",
		ChainID:     "attack",
		CharacterID: "char_1",
		Sheet:       &rollentity.StatSheet{CharacterID: "char_1"},
		Variables:   map[string]int{"target_ac": 20},
	})
	s.Require().NoError(err)

	s.True(out.Result.StepResults[1].Skipped)
	s.Equal(0, out.Result.GrandTotal)
}

func (s *OrchestratorTestSuite) TestRollChain_WithoutCharacterSkipsHistory() {
	s.expectItem(s.longsword())

	out, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{ItemID: "item_sword", ChainID: "attack"})
	s.Require().NoError(err)
	s.Empty(out.Result.CharacterID)
	s.Len(s.published, 1)
}

func (s *OrchestratorTestSuite) TestRollChain_HistoryFailureDoesNotFailRoll() {
	s.expectItem(s.longsword())
	s.mockStats.EXPECT().
		Get(s.ctx, gomock.Any()).
		Return(&stats.GetOutput{Sheet: &rollentity.StatSheet{CharacterID: "char_1"}}, nil)
	s.mockHistory.EXPECT().
		Append(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailable("redis down"))

	out, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{
		ItemID:      "item_sword",
		ChainID:     "attack",
		CharacterID: "char_1",
	})
	s.Require().NoError(err)
	s.Equal(9, out.Result.GrandTotal)
}

func (s *OrchestratorTestSuite) TestRollChain_Errors() {
	s.Run("missing ids", func() {
		_, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("unknown item", func() {
		s.mockItems.EXPECT().
			Get(s.ctx, item.GetInput{ID: "nope"}).
			Return(nil, errors.NotFound("item with ID nope not found"))

		_, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{ItemID: "nope", ChainID: "attack"})
		s.True(errors.IsNotFound(err))
	})

	s.Run("unknown chain", func() {
		s.expectItem(s.longsword())

		_, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{ItemID: "item_sword", ChainID: "parry"})
		s.True(errors.IsNotFound(err))
	})

	s.Run("stats failure", func() {
		s.expectItem(s.longsword())
		s.mockStats.EXPECT().Get(s.ctx, gomock.Any()).Return(nil, errors.Unavailable("redis down"))

		_, err := s.svc.RollChain(s.ctx, &roll.RollChainInput{
			ItemID:      "item_sword",
			ChainID:     "attack",
			CharacterID: "char_1",
		})
		s.True(errors.IsUnavailable(err))
	})
}

func (s *OrchestratorTestSuite) TestCreateItem_AssignsIDAndValidates() {
	sword := s.longsword()
	sword.ID = ""

	s.mockItems.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input item.CreateInput) (*item.CreateOutput, error) {
			s.Equal("item_1", input.Item.ID)
			return &item.CreateOutput{Item: input.Item}, nil
		})

	out, err := s.svc.CreateItem(s.ctx, &roll.CreateItemInput{Item: sword})
	s.Require().NoError(err)
	s.Equal("item_1", out.Item.ID)
	s.Empty(sword.ID, "caller's item is not modified")
}

func (s *OrchestratorTestSuite) TestCreateItem_RejectsInvalidChain() {
	broken := s.longsword()
	broken.Chains[0].Steps[1].Condition.StepID = "missing"

	_, err := s.svc.CreateItem(s.ctx, &roll.CreateItemInput{Item: broken})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.CreateItem(s.ctx, &roll.CreateItemInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestUpdateItem() {
	sword := s.longsword()
	s.mockItems.EXPECT().
		Update(s.ctx, item.UpdateInput{Item: sword}).
		Return(&item.UpdateOutput{Item: sword}, nil)

	out, err := s.svc.UpdateItem(s.ctx, &roll.UpdateItemInput{Item: sword})
	s.Require().NoError(err)
	s.Equal(sword, out.Item)

	noID := s.longsword()
	noID.ID = ""
	_, err = s.svc.UpdateItem(s.ctx, &roll.UpdateItemInput{Item: noID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGetDeleteList() {
	sword := s.longsword()
	s.expectItem(sword)
	got, err := s.svc.GetItem(s.ctx, &roll.GetItemInput{ItemID: "item_sword"})
	s.Require().NoError(err)
	s.Equal(sword, got.Item)

	s.mockItems.EXPECT().Delete(s.ctx, item.DeleteInput{ID: "item_sword"}).Return(&item.DeleteOutput{}, nil)
	_, err = s.svc.DeleteItem(s.ctx, &roll.DeleteItemInput{ItemID: "item_sword"})
	s.Require().NoError(err)

	s.mockItems.EXPECT().
		ListByOwner(s.ctx, item.ListByOwnerInput{OwnerID: "char_1"}).
		Return(&item.ListByOwnerOutput{Items: []*rollentity.Item{sword}}, nil)
	listed, err := s.svc.ListItems(s.ctx, &roll.ListItemsInput{OwnerID: "char_1"})
	s.Require().NoError(err)
	s.Len(listed.Items, 1)

	_, err = s.svc.GetItem(s.ctx, &roll.GetItemInput{})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.svc.DeleteItem(s.ctx, &roll.DeleteItemInput{})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.svc.ListItems(s.ctx, &roll.ListItemsInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestPutStats() {
	sheet := &rollentity.StatSheet{
		CharacterID: "char_1",
		Attributes:  map[string]int{"strength": 16},
	}
	s.mockStats.EXPECT().Put(s.ctx, stats.PutInput{Sheet: sheet}).Return(&stats.PutOutput{Sheet: sheet}, nil)

	out, err := s.svc.PutStats(s.ctx, &roll.PutStatsInput{Sheet: sheet})
	s.Require().NoError(err)
	s.Equal(sheet, out.Sheet)

	_, err = s.svc.PutStats(s.ctx, &roll.PutStatsInput{Sheet: &rollentity.StatSheet{}})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.PutStats(s.ctx, &roll.PutStatsInput{Sheet: &rollentity.StatSheet{
		CharacterID: "char_1",
		Custom:      []rollentity.CustomStat{{Name: "Luck", Value: 2}},
	}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestListHistory() {
	results := []*rollentity.ChainResult{{RollID: "roll_2"}, {RollID: "roll_1"}}
	s.mockHistory.EXPECT().
		List(s.ctx, history.ListInput{CharacterID: "char_1", Limit: 2}).
		Return(&history.ListOutput{Results: results}, nil)

	out, err := s.svc.ListHistory(s.ctx, &roll.ListHistoryInput{CharacterID: "char_1", Limit: 2})
	s.Require().NoError(err)
	s.Equal(results, out.Results)

	_, err = s.svc.ListHistory(s.ctx, &roll.ListHistoryInput{CharacterID: "char_1", Limit: -1})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestImportWeapon() {
	s.mockCatalog.EXPECT().
		GetWeapon(s.ctx, "rapier").
		Return(&catalog.WeaponData{
			ID:         "rapier",
			Name:       "Rapier",
			DamageDice: "1d8",
			DamageType: "piercing",
			Finesse:    true,
		}, nil)
	s.mockItems.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input item.CreateInput) (*item.CreateOutput, error) {
			return &item.CreateOutput{Item: input.Item}, nil
		})

	out, err := s.svc.ImportWeapon(s.ctx, &roll.ImportWeaponInput{WeaponID: "rapier", OwnerID: "char_1"})
	s.Require().NoError(err)

	s.Equal("item_1", out.Item.ID)
	s.Equal("char_1", out.Item.OwnerID)
	s.Require().Len(out.Item.Chains, 1)
	steps := out.Item.Chains[0].Steps
	s.Require().Len(steps, 2)
	s.Equal("attribute:dexterity", steps[0].StatRef)
	s.Equal("1d8", steps[1].Formula)
	s.Equal("piercing", steps[1].DamageCategory)
}

func (s *OrchestratorTestSuite) TestImportWeapon_CatalogError() {
	s.mockCatalog.EXPECT().
		GetWeapon(s.ctx, "shield").
		Return(nil, errors.InvalidArgument("shield is equipment, not a weapon"))

	_, err := s.svc.ImportWeapon(s.ctx, &roll.ImportWeaponInput{WeaponID: "shield"})
	s.True(errors.IsInvalidArgument(err))
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := roll.NewOrchestrator(&roll.Config{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
