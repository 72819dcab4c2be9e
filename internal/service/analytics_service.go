package service

import (
	"context"
	"encoding/json"

	"ask-engine-be/internal/dto"
	"ask-engine-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IAnalyticsPublisher emits query analytics events on the event bus.
type IAnalyticsPublisher interface {
	PublishQueryAnswered(evt *dto.QueryAnsweredEvent) error
}

type analyticsPublisher struct {
	topicName string
	publisher message.Publisher
}

func NewAnalyticsPublisher(topicName string, publisher message.Publisher) IAnalyticsPublisher {
	return &analyticsPublisher{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *analyticsPublisher) PublishQueryAnswered(evt *dto.QueryAnsweredEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.publisher.Publish(p.topicName, msg)
}

// IAnalyticsConsumerService drains the analytics topic in the background.
type IAnalyticsConsumerService interface {
	Consume(ctx context.Context) error
}

type analyticsConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewAnalyticsConsumerService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IAnalyticsConsumerService {
	return &analyticsConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (cs *analyticsConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *analyticsConsumerService) processMessage(msg *message.Message) {
	var evt dto.QueryAnsweredEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("analytics", "Failed to unmarshal analytics event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("analytics", "Query answered", map[string]interface{}{
		"request_id":  evt.RequestId.String(),
		"query_chars": len(evt.Query),
		"chunk_count": evt.ChunkCount,
		"total_ms":    evt.Timings["total_ms"],
	})
	msg.Ack()
}
