package mq

// Publisher is the outbound event hook. The default Noop keeps the service
// self-contained; swap in a RabbitMQ / Kafka implementation when needed.

type Publisher interface {
	Publish(topic string, payload []byte) error
}

type Subscriber interface {
	Subscribe(topic string, handler func([]byte) error) error
}

type Noop struct{}

func (Noop) Publish(topic string, payload []byte) error               { return nil }
func (Noop) Subscribe(topic string, handler func([]byte) error) error { return nil }
