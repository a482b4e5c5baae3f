package ai

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"web_controller/domain/entities"
	"web_controller/domain/interfaces"
)

// Exchanger sends one relay message and returns the single reply
type Exchanger interface {
	Exchange(ctx context.Context, msg entities.RelayMessage) (string, error)
}

// RelayAgent asks the external agent through the relay, attaching the
// current session artifacts to every prompt.
type RelayAgent struct {
	relay  Exchanger
	store  interfaces.ArtifactStore
	logger logrus.FieldLogger
}

func NewRelayAgent(relay Exchanger, store interfaces.ArtifactStore, logger logrus.FieldLogger) *RelayAgent {
	return &RelayAgent{
		relay:  relay,
		store:  store,
		logger: logger,
	}
}

// Ask returns the agent's raw reply. Transport faults are logged and come
// back as an empty reply together with the error.
func (a *RelayAgent) Ask(ctx context.Context, prompt string) (string, error) {
	msg := entities.RelayMessage{
		Prompt:      prompt,
		Attachments: a.store.Attachments(),
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Name)
	}
	a.logger.WithField("attachments", names).Debug("Asking agent")

	reply, err := a.relay.Exchange(ctx, msg)
	if err != nil {
		a.logger.WithError(err).Warn("Agent request failed")
		return "", fmt.Errorf("ask agent: %w", err)
	}
	return reply, nil
}

var _ interfaces.AI = (*RelayAgent)(nil)
