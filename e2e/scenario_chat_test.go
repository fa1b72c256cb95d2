package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseHTTPSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

// TestPresenceAndMessagingFlow walks the whole surface of a live server:
// registration, conflict, broadcast, private visibility, and heartbeat.
// Names are unique per run so the suite can be replayed against a server
// whose sweeper has not yet evicted previous participants.
func (s *testChatScenarioSuite) TestPresenceAndMessagingFlow() {
	run := time.Now().UnixMilli()
	alice := fmt.Sprintf("alice-%d", run)
	bob := fmt.Sprintf("bob-%d", run)

	s.Run("register participants", func() {
		s.Step(s.T(), "Registering "+alice)
		status, _ := s.Do(s.T(), http.MethodPost, "/participants", "", map[string]string{"name": alice})
		s.Require().Equal(http.StatusCreated, status)

		status, _ = s.Do(s.T(), http.MethodPost, "/participants", "", map[string]string{"name": bob})
		s.Require().Equal(http.StatusCreated, status)
	})

	s.Run("duplicate registration conflicts", func() {
		status, _ := s.Do(s.T(), http.MethodPost, "/participants", "", map[string]string{"name": alice})
		s.Require().Equal(http.StatusConflict, status)
	})

	s.Run("broadcast is visible to everyone", func() {
		s.Step(s.T(), "Posting broadcast as "+alice)
		status, _ := s.Do(s.T(), http.MethodPost, "/messages", alice, map[string]string{
			"to": "everyone", "text": "hello from e2e", "type": "broadcast",
		})
		s.Require().Equal(http.StatusCreated, status)

		status, body := s.Do(s.T(), http.MethodGet, "/messages", bob, nil)
		s.Require().Equal(http.StatusOK, status)

		var messages []map[string]any
		s.Require().NoError(json.Unmarshal(body, &messages))
		s.Require().NotEmpty(messages)
	})

	s.Run("private message is hidden from third parties", func() {
		status, _ := s.Do(s.T(), http.MethodPost, "/messages", alice, map[string]string{
			"to": bob, "text": "just between us", "type": "private",
		})
		s.Require().Equal(http.StatusCreated, status)

		carol := fmt.Sprintf("carol-%d", run)
		status, body := s.Do(s.T(), http.MethodGet, "/messages", carol, nil)
		s.Require().Equal(http.StatusOK, status)

		var messages []map[string]any
		s.Require().NoError(json.Unmarshal(body, &messages))
		for _, m := range messages {
			s.Require().NotEqual("just between us", m["text"])
		}
	})

	s.Run("heartbeat refreshes presence", func() {
		status, body := s.Do(s.T(), http.MethodPost, "/status", alice, nil)
		s.Require().Equal(http.StatusOK, status)

		var participant map[string]any
		s.Require().NoError(json.Unmarshal(body, &participant))
		s.Require().Equal(alice, participant["name"])
	})

	s.Run("heartbeat for unknown participant is 404", func() {
		status, _ := s.Do(s.T(), http.MethodPost, "/status", fmt.Sprintf("ghost-%d", run), nil)
		s.Require().Equal(http.StatusNotFound, status)
	})
}
