package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite loads the environment configuration and offers a small
// HTTP client with colorized logging for the scenario suites.
// Suites are skipped entirely when E2E_SERVER_URL is not set.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerURL == "" {
		s.T().Skip("E2E_SERVER_URL not set, skipping live scenario")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header so a scenario's progress is readable in logs.
func (s *BaseHTTPSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Do sends a JSON request with the optional User identity header and returns
// the status code and decoded body bytes.
func (s *BaseHTTPSuite) Do(t *testing.T, method, path, user string, payload any) (int, []byte) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(data)
		if s.Config.DebugJSON {
			t.Logf("%s %s -> %s", method, path, data)
		}
	}

	request, err := http.NewRequest(method, s.Config.ServerURL+path, body)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")
	if user != "" {
		request.Header.Set("User", user)
	}

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	s.Require().NoError(err)

	t.Logf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		t.Logf("body: %s", data)
	}
	return response.StatusCode, data
}
