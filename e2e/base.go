package e2e

import (
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"parley/domain"
	"parley/observability"
	"parley/runtime/workers"
	"parley/session"
	"parley/transport"
)

// BaseSessionSuite drives full in-process sessions against the loopback
// hub: real controllers, real supervised pumps, no mocks.
type BaseSessionSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
	Hub    *transport.Hub
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Log = logs.GetLoggerFromString(s.Config.LogLevel)
}

// SetupTest gives every scenario a fresh hub.
func (s *BaseSessionSuite) SetupTest() {
	s.Hub = transport.NewHub(s.Log, s.Config.BufferSize)
}

// Step prints a colorized header so scenario phases stand out in the logs.
func (s *BaseSessionSuite) Step(name string) {
	header := "  ====== " + name + " ======"
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// OpenSession connects a participant to the hub and returns a live
// controller for them. Closing is registered on test cleanup.
func (s *BaseSessionSuite) OpenSession(who domain.Participant) *session.Controller {
	tp := s.Hub.Connect(domain.PresenceEntry{ID: who.ID, Name: who.Name})
	sup := workers.NewSupervisor(s.Log, s.Config.RestartInterval)
	controller := session.NewController(s.Log, tp, sup,
		session.Identity{ParticipantID: who.ID, Name: who.Name},
		nil, observability.NewSessionStats(), nil, nil)
	s.T().Cleanup(controller.Close)
	return controller
}

// Eventually wraps the default polling cadence used by the scenarios.
func (s *BaseSessionSuite) Eventually(cond func() bool, msgAndArgs ...any) {
	s.Require().Eventually(cond, 2*time.Second, 10*time.Millisecond, msgAndArgs...)
}
