package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"parley/contract"
	"parley/domain"
	"parley/errors"
	"parley/staging"
)

var (
	alice = domain.Participant{ID: "U1", Name: "Alice"}
	bob   = domain.Participant{ID: "U2", Name: "Bob", Blocked: true}
	clara = domain.Participant{ID: "U3", Name: "Clara"}

	cohort = domain.Conversation{
		ID:           "G1",
		Name:         "Cohort",
		Kind:         domain.KindGroup,
		Participants: []domain.Participant{alice, bob, clara},
	}
)

type testGroupSessionSuite struct {
	BaseSessionSuite
}

func TestGroupSessionSuite(t *testing.T) {
	suite.Run(t, &testGroupSessionSuite{})
}

func (s *testGroupSessionSuite) TestGroupLifecycleWithBlockedMember() {
	ctx := context.Background()

	claraSession := s.OpenSession(clara)
	bobSession := s.OpenSession(bob)

	s.Step("Step 1: Clara opens the empty group")
	s.Require().NoError(claraSession.Select(ctx, cohort))
	s.Require().Empty(claraSession.Timeline())
	s.Eventually(func() bool { return claraSession.IsOnline(clara.ID) },
		"Clara must appear in her own roster snapshot")

	s.Step("Step 2: Bob joins, roster converges on both sides")
	s.Require().NoError(bobSession.Select(ctx, cohort))
	s.Eventually(func() bool { return claraSession.IsOnline(bob.ID) })
	s.Eventually(func() bool { return bobSession.IsOnline(clara.ID) })
	s.Require().Len(claraSession.Roster(), 2)

	s.Step("Step 3: A live message from Alice lands on every timeline")
	aliceTransport := s.Hub.Connect(domain.PresenceEntry{ID: alice.ID, Name: alice.Name})
	s.Require().NoError(aliceTransport.SendMessage(ctx, contract.SendRequest{
		Conversation: cohort.ID,
		SenderID:     alice.ID,
		SenderName:   alice.Name,
		Content:      "welcome everyone",
		Type:         domain.TypeText,
	}))
	s.Eventually(func() bool { return len(claraSession.Timeline()) == 1 })
	s.Eventually(func() bool { return len(bobSession.Timeline()) == 1 })

	s.Step("Step 4: The gate blocks Bob but not Clara")
	s.Require().False(bobSession.CanInteract())
	s.Require().ErrorIs(bobSession.Send(ctx, "let me talk"), errors.ErrBlockedParticipant)
	s.Require().True(claraSession.CanInteract())
	s.Require().NoError(claraSession.Send(ctx, "hi Alice"))

	// Clara's own message comes back through the live stream, for Bob too.
	s.Eventually(func() bool { return len(claraSession.Timeline()) == 2 })
	s.Eventually(func() bool { return len(bobSession.Timeline()) == 2 })
}

func (s *testGroupSessionSuite) TestReplyAndAttachmentFlow() {
	ctx := context.Background()
	pngPayload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	claraSession := s.OpenSession(clara)
	aliceSession := s.OpenSession(alice)

	s.Step("Step 1: Both open the group")
	s.Require().NoError(claraSession.Select(ctx, cohort))
	s.Require().NoError(aliceSession.Select(ctx, cohort))

	s.Step("Step 2: Alice asks a question")
	s.Require().NoError(aliceSession.Send(ctx, "can someone share the diagram?"))
	s.Eventually(func() bool { return len(claraSession.Timeline()) == 1 })
	question := claraSession.Timeline()[0]

	s.Step("Step 3: Clara replies with an image attachment")
	s.Require().NoError(claraSession.BeginReply(question))
	staged, err := claraSession.StageFiles(
		[]staging.File{{Name: "diagram.png", Data: pngPayload}}, domain.AttachmentImage)
	s.Require().NoError(err)
	s.Require().Len(staged, 1)
	s.Require().NoError(claraSession.Send(ctx, "here it is"))

	s.Step("Step 4: Alice sees the threaded image message")
	s.Eventually(func() bool { return len(aliceSession.Timeline()) == 2 })
	reply := aliceSession.Timeline()[1]
	s.Require().Equal(domain.TypeImage, reply.Type)
	s.Require().Len(reply.Attachments, 1)
	s.Require().NotNil(reply.Parent)
	s.Require().Equal(question.ID, reply.Parent.ID)
	s.Require().Equal(alice.Name, reply.Parent.SenderName)

	// Compose state on Clara's side is spent.
	_, hasDraft := claraSession.ReplyDraft()
	s.Require().False(hasDraft)
	s.Require().Empty(claraSession.StagedPreviews())
}
