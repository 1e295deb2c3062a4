package client

import (
	"bytes"
	"net"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/handlers/api/v1alpha1"
	"github.com/Dizabanik/droll/internal/orchestrators/dice"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
	"github.com/Dizabanik/droll/internal/testutils"
)

// fixedRoller always lands on the same face
type fixedRoller struct{ face int }

func (r fixedRoller) Roll(_ int) (int, error) { return r.face, nil }

func (r fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = r.face
	}
	return out, nil
}

type ClientCommandsTestSuite struct {
	suite.Suite
	server *grpc.Server
	out    *bytes.Buffer
}

func TestClientCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(ClientCommandsTestSuite))
}

func (s *ClientCommandsTestSuite) SetupTest() {
	repo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client: testutils.CreateTestRedisClient(s.T()),
		Clock:  clock.New(),
	})
	s.Require().NoError(err)

	svc, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: repo,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          fixedRoller{face: 4},
	})
	s.Require().NoError(err)

	handler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{DiceService: svc})
	s.Require().NoError(err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	s.server = grpc.NewServer()
	apiv1alpha1.RegisterDiceServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(lis)
	}()

	viper.Set("server", lis.Addr().String())
	s.out = &bytes.Buffer{}
	ClientCmd.SetOut(s.out)
}

func (s *ClientCommandsTestSuite) TearDownTest() {
	s.server.Stop()
	ClientCmd.SetArgs(nil)
}

func (s *ClientCommandsTestSuite) run(args ...string) error {
	s.out.Reset()
	ClientCmd.SetArgs(args)
	return ClientCmd.Execute()
}

func (s *ClientCommandsTestSuite) TestRollThenGetThenClear() {
	s.Require().NoError(s.run("roll-dice", "2d6+1", "char_1", "attack", "--description", "sneak"))
	s.Contains(s.out.String(), "Notation: 2d6+1")
	s.Contains(s.out.String(), "Individual Dice: [4 4]")
	s.Contains(s.out.String(), "Total: 9")
	s.Contains(s.out.String(), "Description: sneak")

	s.Require().NoError(s.run("get-roll-session", "char_1", "attack"))
	s.Contains(s.out.String(), "Total Rolls: 1")
	s.Contains(s.out.String(), "Roll ID: roll_1")

	s.Require().NoError(s.run("clear-roll-session", "char_1", "attack"))
	s.Contains(s.out.String(), "Roll session cleared successfully (1 rolls cleared)")

	s.Error(s.run("get-roll-session", "char_1", "attack"))
}

func (s *ClientCommandsTestSuite) TestBadNotation() {
	err := s.run("roll-dice", "banana", "char_1", "attack")
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to roll dice")
}
