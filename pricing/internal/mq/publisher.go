package mq

import (
	"fmt"

	"op_trader/pricing/internal/events"

	zmq "github.com/pebbe/zmq4"
)

type Publisher struct {
	socket *zmq.Socket
}

// NewPublisher binds a PUB socket on the given port.
func NewPublisher(port string) (*Publisher, error) {
	sock, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create pub socket: %w", err)
	}
	addr := "tcp://*:" + port
	if err := sock.Bind(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return &Publisher{socket: sock}, nil
}

// PublishPriceChange sends a two-frame message: topic, then the flatbuffer.
func (p *Publisher) PublishPriceChange(ev events.PriceChange) error {
	if _, err := p.socket.SendMessage(events.PriceChangeTopic, events.EncodePriceChange(ev)); err != nil {
		return fmt.Errorf("failed to publish price change: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.socket.Close()
}
