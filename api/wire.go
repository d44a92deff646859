package api

import (
	"sala-chat/domain"

	"github.com/samber/lo"
)

type registerRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// participantResponse carries the liveness stamp as epoch millis.
type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()}
}

func toParticipantResponses(ps []domain.Participant) []participantResponse {
	return lo.Map(ps, func(p domain.Participant, _ int) participantResponse {
		return toParticipantResponse(p)
	})
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: m.Type,
		Time: m.Clock(),
	}
}

func toMessageResponses(ms []domain.Message) []messageResponse {
	return lo.Map(ms, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}
