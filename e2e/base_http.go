package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite wires the shared config and a logging HTTP helper for the
// end-to-end scenarios. It expects a server already running at E2E_BASE_URL
// and skips everything otherwise.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BaseURL == "" {
		s.T().Skip("E2E_BASE_URL not set, skipping end-to-end suite")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header so scenario logs read as a script.
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Do sends a request with the identity header and an optional JSON body,
// returning the status code and decoded body bytes.
func (s *BaseHTTPSuite) Do(method, path, user string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.Config.BaseURL+path, reader)
	s.Require().NoError(err)
	if user != "" {
		req.Header.Set("User", user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.T().Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON && len(data) > 0 {
		s.T().Logf("RESPONSE:\n%s", string(data))
	}
	return resp.StatusCode, data
}
