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

type wireMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func (s *testChatScenarioSuite) TestFullChatFlow() {
	// Unique names per run so the suite can be re-run against a live server.
	suffix := time.Now().UnixNano() % 100000
	alice := fmt.Sprintf("alice%d", suffix)
	bruno := fmt.Sprintf("bruno%d", suffix)
	clara := fmt.Sprintf("clara%d", suffix)

	s.Step("Register three participants")
	for _, name := range []string{alice, bruno, clara} {
		code, _ := s.Do(http.MethodPost, "/participants", "", map[string]string{"name": name})
		s.Require().Equal(http.StatusCreated, code)
	}

	s.Step("Duplicate registration conflicts")
	code, _ := s.Do(http.MethodPost, "/participants", "", map[string]string{"name": alice})
	s.Require().Equal(http.StatusConflict, code)

	s.Step("Post a public and a private message")
	code, body := s.Do(http.MethodPost, "/messages", alice, map[string]string{
		"to": "Todos", "text": "bom dia pessoal", "type": "message",
	})
	s.Require().Equal(http.StatusCreated, code)
	var created struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(body, &created))
	s.Require().NotEmpty(created.ID)

	code, _ = s.Do(http.MethodPost, "/messages", alice, map[string]string{
		"to": bruno, "text": "segredo", "type": "private_message",
	})
	s.Require().Equal(http.StatusCreated, code)

	s.Step("Private message hidden from a third participant")
	code, body = s.Do(http.MethodGet, "/messages", clara, nil)
	s.Require().Equal(http.StatusOK, code)
	var visible []wireMessage
	s.Require().NoError(json.Unmarshal(body, &visible))
	for _, m := range visible {
		s.Require().NotEqual("segredo", m.Text)
	}

	s.Step("Owner edits the public message")
	code, _ = s.Do(http.MethodPut, "/messages/"+created.ID, alice, map[string]string{
		"to": "Todos", "text": "boa tarde pessoal", "type": "message",
	})
	s.Require().Equal(http.StatusOK, code)

	s.Step("Non-owner cannot delete it")
	code, _ = s.Do(http.MethodDelete, "/messages/"+created.ID, bruno, nil)
	s.Require().Equal(http.StatusUnauthorized, code)

	s.Step("Edited content is what readers see")
	code, body = s.Do(http.MethodGet, "/messages", bruno, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(body, &visible))
	var found bool
	for _, m := range visible {
		if m.ID == created.ID {
			found = true
			s.Require().Equal("boa tarde pessoal", m.Text)
			s.Require().Equal(alice, m.From)
		}
	}
	s.Require().True(found)

	s.Step("Status ping succeeds for registered, 404 otherwise")
	code, _ = s.Do(http.MethodPost, "/status", alice, nil)
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.Do(http.MethodPost, "/status", "ninguem_aqui", nil)
	s.Require().Equal(http.StatusNotFound, code)
}
