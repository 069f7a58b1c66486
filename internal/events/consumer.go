package events

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// NotificationHandler receives raw messages from the notifications topic.
// Payloads may be OrderNotification JSON or plain text.
type NotificationHandler interface {
	HandleNotification(key, value []byte) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       NotificationHandler
	logger        *logrus.Logger
	topics        []string
}

type consumerGroupHandler struct {
	handler NotificationHandler
	logger  *logrus.Logger
}

func NewConsumer(brokers, groupID string, handler NotificationHandler, logger *logrus.Logger) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Version = sarama.V2_6_0_0

	consumerGroup, err := sarama.NewConsumerGroup(strings.Split(brokers, ","), groupID, config)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		handler:       handler,
		logger:        logger,
		topics:        []string{OrderNotificationsTopic},
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		handler: c.handler,
		logger:  c.logger,
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Kafka consumer context cancelled")
			return nil
		default:
			if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
				c.logger.WithError(err).Error("Error consuming from Kafka")
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.HandleNotification(message.Key, message.Value); err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"topic":  message.Topic,
				"offset": message.Offset,
			}).Error("Failed to handle notification")
		}
		session.MarkMessage(message, "")
	}
	return nil
}
