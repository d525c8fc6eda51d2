package rabbitmq

import (
	"fmt"

	"fleet-dispatch/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

func declareTopology(ch *amqp.Channel) error {
	// 1. Exchanges
	if err := ch.ExchangeDeclare(contracts.ExchangeDispatchTopic, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeDispatchTopic, err)
	}

	// 2. Queues
	queues := []string{
		contracts.QueueDispatchCommands,
		contracts.QueueDispatchResults,
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	// 3. Bindings
	bindings := []struct {
		queue      string
		routingKey string
	}{
		{contracts.QueueDispatchCommands, contracts.RouteCommandPrefix + "*"},
		{contracts.QueueDispatchResults, contracts.RouteResultPrefix + "*"},
	}

	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.routingKey, contracts.ExchangeDispatchTopic, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, contracts.ExchangeDispatchTopic, err)
		}
	}

	return nil
}
