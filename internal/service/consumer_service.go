package service

import (
	"context"
	"encoding/json"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/repository/contract"
	"ai-appbuilder-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher forwards events off-process. Implemented by pkg/nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	generationRepo contract.GenerationRepository
	eventPublisher EventPublisher
	logger         logger.ILogger
}

// NewConsumerService applies chat status changes to generation history and
// forwards them to eventPublisher when one is configured (nil otherwise).
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	generationRepo contract.GenerationRepository,
	eventPublisher EventPublisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		generationRepo: generationRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Always acked; the tracker publishes again on the next status change.
	defer msg.Ack()

	var payload dto.ChatStatusMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal status message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.ChatId == "" {
		return
	}

	if err := cs.generationRepo.UpdateStatusByChatID(ctx, payload.ChatId, payload.Status, payload.DemoUrl); err != nil {
		cs.logger.Error("CONSUMER", "Failed to record chat status", map[string]interface{}{
			"chat_id": payload.ChatId,
			"status":  payload.Status,
			"error":   err.Error(),
		})
	}

	if cs.eventPublisher != nil {
		evt := events.NewChatStatusChanged(payload.ChatId, payload.Status, payload.DemoUrl, payload.ObservedAt)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("CONSUMER", "Failed to publish event", map[string]interface{}{
				"event": evt.EventType(),
				"error": err.Error(),
			})
		}
	}

	cs.logger.Info("CONSUMER", "Chat status changed", map[string]interface{}{
		"chat_id": payload.ChatId,
		"status":  payload.Status,
	})
}
