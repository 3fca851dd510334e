package service

import (
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/pubsub"
	"go.uber.org/zap"
)

func publish(p pubsub.Publisher, log *zap.Logger, eventType, lobbyID string, payload interface{}) {
	if p == nil {
		return
	}
	event, err := pubsub.NewEvent(eventType, lobbyID, payload)
	if err != nil {
		log.Error("Failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	p.Publish(event)
}

func publishLobby(p pubsub.Publisher, log *zap.Logger, lobby *domain.Lobby) {
	publish(p, log, pubsub.EventLobbyUpdated, lobby.ID.String(), lobby)
}
