package events

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/pkg/models"
)

const (
	// OrderNotificationsTopic carries order lifecycle messages: the full
	// order JSON on creation, short text messages for status changes and
	// deletions. No schema is enforced beyond the order entity itself.
	OrderNotificationsTopic = "order.notifications"
)

// OrderNotification wraps the order payload published on creation.
type OrderNotification struct {
	Order     *models.Order `json:"order"`
	EventTime time.Time     `json:"event_time"`
}

type Producer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewProducer(brokers string, logger *logrus.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), config)
	if err != nil {
		return nil, err
	}

	return &Producer{
		producer: producer,
		logger:   logger,
	}, nil
}

// PublishOrderCreated sends the serialized order to the notifications topic,
// keyed by order ID. Failures are reported to the caller, who logs and moves
// on; a persisted order is never rolled back over a lost notification.
func (p *Producer) PublishOrderCreated(order *models.Order) error {
	notification := OrderNotification{
		Order:     order,
		EventTime: time.Now(),
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: OrderNotificationsTopic,
		Key:   sarama.StringEncoder(strconv.Itoa(order.OrderID)),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).Error("Failed to send order notification to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     OrderNotificationsTopic,
		"partition": partition,
		"offset":    offset,
		"order_id":  order.OrderID,
	}).Info("Order notification published")

	return nil
}

// PublishText sends a plain-text message to the notifications topic, used for
// status updates and deletions.
func (p *Producer) PublishText(message string) error {
	msg := &sarama.ProducerMessage{
		Topic: OrderNotificationsTopic,
		Value: sarama.StringEncoder(message),
	}

	_, _, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).Error("Failed to send message to Kafka")
		return err
	}

	p.logger.WithField("message", message).Info("Queue message published")
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
