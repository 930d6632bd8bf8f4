package config

import (
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
)

const (
	PaymentsTopic = "storefront-payments"
	CartsTopic    = "storefront-carts"
)

func getKafkaBrokerURLs() []string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	return strings.Split(brokers, ",")
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(getKafkaBrokerURLs()...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // same key, same partition
		AllowAutoTopicCreation: true,
	}
}
