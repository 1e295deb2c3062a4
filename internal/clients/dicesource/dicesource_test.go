package dicesource_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/clients/dicesource"
	dicesourcemock "github.com/Dizabanik/droll/internal/clients/dicesource/mock"
	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/handlers/api/v1alpha1"
	"github.com/Dizabanik/droll/internal/orchestrators/dice"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
	"github.com/Dizabanik/droll/internal/testutils"
)

// queueRoller hands out faces in order and records each RollN call
type queueRoller struct {
	faces []int
	calls [][2]int
	err   error
}

func (r *queueRoller) Roll(size int) (int, error) {
	faces, err := r.RollN(1, size)
	if err != nil {
		return 0, err
	}
	return faces[0], nil
}

func (r *queueRoller) RollN(count, size int) ([]int, error) {
	r.calls = append(r.calls, [2]int{count, size})
	if r.err != nil {
		return nil, r.err
	}
	out := make([]int, count)
	for i := range out {
		if len(r.faces) == 0 {
			out[i] = 1
			continue
		}
		out[i] = r.faces[0]
		r.faces = r.faces[1:]
	}
	return out, nil
}

func requests() []roll.DieRequest {
	return []roll.DieRequest{
		{ID: "die_1", StepID: "attack", Sides: 20, Role: roll.DieRoleStandard},
		{ID: "die_2", StepID: "damage", Sides: 8, Role: roll.DieRoleStandard},
		{ID: "die_3", StepID: "flame", Sides: 6, Role: roll.DieRoleStandard},
		{ID: "die_4", StepID: "flame", Sides: 6, Role: roll.DieRoleStandard},
	}
}

func TestLocal_GroupsBySize(t *testing.T) {
	roller := &queueRoller{faces: []int{2, 5, 7, 18}}
	src := dicesource.NewLocal(roller)

	values, err := src.Roll(context.Background(), requests())
	require.NoError(t, err)

	// smallest size first: 2d6, then 1d8, then 1d20
	assert.Equal(t, [][2]int{{2, 6}, {1, 8}, {1, 20}}, roller.calls)
	assert.Equal(t, map[string]int{"die_3": 2, "die_4": 5, "die_2": 7, "die_1": 18}, values)
}

func TestLocal_Errors(t *testing.T) {
	src := dicesource.NewLocal(&queueRoller{err: errors.Internal("boom")})
	_, err := src.Roll(context.Background(), requests())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dicesource.NewLocal(nil).Roll(ctx, requests())
	assert.True(t, errors.IsCanceled(err))
}

func TestLocal_DefaultRollerStaysInRange(t *testing.T) {
	src := dicesource.NewLocal(nil)
	values, err := src.Roll(context.Background(), requests())
	require.NoError(t, err)

	for _, req := range requests() {
		v := values[req.ID]
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, req.Sides)
	}
}

type FallbackTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	primary *dicesourcemock.MockSource
	roller  *queueRoller
	ctx     context.Context
}

func TestFallbackTestSuite(t *testing.T) {
	suite.Run(t, new(FallbackTestSuite))
}

func (s *FallbackTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.primary = dicesourcemock.NewMockSource(s.ctrl)
	s.roller = &queueRoller{faces: []int{3, 3, 3, 3}}
	s.ctx = context.Background()
}

func (s *FallbackTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FallbackTestSuite) TestPrimaryAnswersEverything() {
	want := map[string]int{"die_1": 20, "die_2": 8, "die_3": 1, "die_4": 6}
	s.primary.EXPECT().Roll(gomock.Any(), requests()).Return(want, nil)

	values, err := dicesource.WithFallback(s.primary, s.roller, time.Second).Roll(s.ctx, requests())
	s.Require().NoError(err)
	s.Equal(want, values)
	s.Empty(s.roller.calls)
}

func (s *FallbackTestSuite) TestFillsMissingAndOutOfRange() {
	s.primary.EXPECT().
		Roll(gomock.Any(), gomock.Any()).
		Return(map[string]int{"die_1": 17, "die_2": 9, "die_3": 0}, nil)

	values, err := dicesource.WithFallback(s.primary, s.roller, time.Second).Roll(s.ctx, requests())
	s.Require().NoError(err)

	s.Equal(17, values["die_1"])
	s.Equal(3, values["die_2"])
	s.Equal(3, values["die_3"])
	s.Equal(3, values["die_4"])
	s.Len(s.roller.calls, 3)
}

func (s *FallbackTestSuite) TestPrimaryError() {
	s.primary.EXPECT().
		Roll(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("dice service down"))

	values, err := dicesource.WithFallback(s.primary, s.roller, time.Second).Roll(s.ctx, requests())
	s.Require().NoError(err)
	s.Len(values, 4)
}

func (s *FallbackTestSuite) TestSlowPrimaryIsCutOff() {
	s.primary.EXPECT().
		Roll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []roll.DieRequest) (map[string]int, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	start := time.Now()
	values, err := dicesource.WithFallback(s.primary, s.roller, 20*time.Millisecond).Roll(s.ctx, requests())
	s.Require().NoError(err)
	s.Len(values, 4)
	s.Less(time.Since(start), time.Second)
}

func (s *FallbackTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := dicesource.WithFallback(s.primary, s.roller, time.Second).Roll(ctx, requests())
	s.ErrorIs(err, context.Canceled)
}

func (s *FallbackTestSuite) TestNilPrimaryRollsLocally() {
	values, err := dicesource.WithFallback(nil, s.roller, 0).Roll(s.ctx, requests())
	s.Require().NoError(err)
	s.Equal(map[string]int{"die_1": 3, "die_2": 3, "die_3": 3, "die_4": 3}, values)
}

// RemoteTestSuite runs the remote source against a real DiceService served
// over an in-memory listener
type RemoteTestSuite struct {
	suite.Suite
	serverRoller *queueRoller
	conn         *grpc.ClientConn
	server       *grpc.Server
	client       apiv1alpha1.DiceServiceClient
	ctx          context.Context
}

func TestRemoteTestSuite(t *testing.T) {
	suite.Run(t, new(RemoteTestSuite))
}

func (s *RemoteTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.serverRoller = &queueRoller{}

	repo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client: testutils.CreateTestRedisClient(s.T()),
		Clock:  clock.New(),
	})
	s.Require().NoError(err)

	svc, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: repo,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          s.serverRoller,
	})
	s.Require().NoError(err)

	handler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{DiceService: svc})
	s.Require().NoError(err)

	lis := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer()
	apiv1alpha1.RegisterDiceServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.conn = conn
	s.client = apiv1alpha1.NewDiceServiceClient(conn)
}

func (s *RemoteTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
}

func (s *RemoteTestSuite) TestOneCallPerSize() {
	s.serverRoller.faces = []int{4, 6, 5, 19}

	src, err := dicesource.NewRemote(&dicesource.RemoteConfig{
		Client:   s.client,
		EntityID: "char_1",
		Context:  "chain:attack",
	})
	s.Require().NoError(err)

	values, err := src.Roll(s.ctx, requests())
	s.Require().NoError(err)

	s.Equal([][2]int{{2, 6}, {1, 8}, {1, 20}}, s.serverRoller.calls)
	s.Equal(map[string]int{"die_3": 4, "die_4": 6, "die_2": 5, "die_1": 19}, values)

	session, err := s.client.GetRollSession(s.ctx, &apiv1alpha1.GetRollSessionRequest{
		EntityId: "char_1",
		Context:  "chain:attack",
	})
	s.Require().NoError(err)
	s.Len(session.Rolls, 3)
	s.Equal("2d6", session.Rolls[0].Notation)
}

func (s *RemoteTestSuite) TestLargeGroupsAreChunked() {
	src, err := dicesource.NewRemote(&dicesource.RemoteConfig{
		Client:   s.client,
		EntityID: "char_1",
		Context:  "chain:volley",
	})
	s.Require().NoError(err)

	reqs := make([]roll.DieRequest, 0, 250)
	for i := range 250 {
		reqs = append(reqs, roll.DieRequest{
			ID:     fmt.Sprintf("die_%d", i),
			StepID: "volley",
			Sides:  6,
			Role:   roll.DieRoleStandard,
		})
	}

	values, err := src.Roll(s.ctx, reqs)
	s.Require().NoError(err)

	s.Equal([][2]int{{100, 6}, {100, 6}, {50, 6}}, s.serverRoller.calls)
	s.Len(values, 250)
}

func (s *RemoteTestSuite) TestRemoteFailureFallsBack() {
	src, err := dicesource.NewRemote(&dicesource.RemoteConfig{
		Client:   s.client,
		EntityID: "char_1",
		Context:  "chain:attack",
	})
	s.Require().NoError(err)
	s.server.Stop()

	values, err := dicesource.WithFallback(src, &queueRoller{faces: []int{2, 2, 2, 2}}, 200*time.Millisecond).
		Roll(s.ctx, requests())
	s.Require().NoError(err)
	s.Equal(map[string]int{"die_1": 2, "die_2": 2, "die_3": 2, "die_4": 2}, values)
}

func TestNewRemote_Validation(t *testing.T) {
	_, err := dicesource.NewRemote(&dicesource.RemoteConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = dicesource.NewRemote(nil)
	assert.True(t, errors.IsInvalidArgument(err))
}
