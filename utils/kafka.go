package utils

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sharath018/event-resource-backend/config"
)

// KafkaWriter publishes to the notification topic. Nil when Kafka is off.
var KafkaWriter *kafka.Writer

func InitializeKafka(cfg *config.Config) {
	if !cfg.KafkaEnabled() {
		log.Println("ℹ️  KAFKA_BROKERS not set, notifications will be delivered in-process")
		return
	}
	KafkaWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNotificationTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	log.Printf("✅ Kafka writer ready for topic %s", cfg.KafkaNotificationTopic)
}

// NewKafkaReader builds a consumer-group reader for the notification topic.
func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaConsumerGroup,
		Topic:    cfg.KafkaNotificationTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func CloseKafka() {
	if KafkaWriter == nil {
		return
	}
	if err := KafkaWriter.Close(); err != nil {
		log.Printf("⚠️ closing Kafka writer: %v", err)
	}
}
