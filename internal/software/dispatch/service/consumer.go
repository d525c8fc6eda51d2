package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch/internal/general/contracts"
	"fleet-dispatch/internal/ports"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RunBackgroundConsumers starts the bus-side command intake. Commands
// arriving on the dispatch_commands queue run through the exact same
// pipeline as HTTP commands; results go back out on the topic exchange.
func (service *dispatchService) RunBackgroundConsumers(ctx context.Context) {
	if service.rabbitmq == nil {
		return
	}
	service.startCommandConsumer(ctx)
}

// startCommandConsumer consumes dispatcher commands from the bus.
func (service *dispatchService) startCommandConsumer(ctx context.Context) {
	go func() {
		consumeCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		err := service.rabbitmq.Consume(
			consumeCtx,
			contracts.QueueDispatchCommands, // queue to consume from
			"dispatch-commands",             // consumer tag
			8,                               // prefetch count
			func(hCtx context.Context, d amqp.Delivery) error {
				var msg contracts.CommandMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					service.logger.Error(ctx, "command_decode_failed",
						"Failed to decode bus command message", err,
						map[string]any{"size": len(d.Body)})
					return fmt.Errorf("decode: %w", err)
				}

				if msg.Text == "" || msg.ContextID == "" {
					// malformed but decodable - ack & ignore to avoid poison loops
					return nil
				}

				service.handleBusCommand(hCtx, msg)
				return nil
			},
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			service.logger.Error(ctx, "command_consume_failed",
				"Failed to consume dispatcher commands", err,
				map[string]any{"queue": contracts.QueueDispatchCommands})
		}
	}()
}

// handleBusCommand runs one bus command through the pipeline and publishes
// the outcome. Pipeline rejections are answers for the dispatcher, not
// redelivery candidates, so the delivery is acked either way.
func (service *dispatchService) handleBusCommand(ctx context.Context, msg contracts.CommandMessage) {
	correlationID := msg.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	ctx = service.logger.WithRequestID(ctx, correlationID)

	result, err := service.ExecuteCommand(ctx, ports.CommandInput{
		Text:      msg.Text,
		UserID:    msg.UserID,
		ContextID: msg.ContextID,
	})

	out := contracts.CommandResultMessage{
		ContextID: msg.ContextID,
		Envelope: contracts.Envelope{
			CorrelationID: correlationID,
			Producer:      "dispatch-service",
			SentAt:        time.Now().UTC(),
		},
	}
	if err != nil {
		out.Error = err.Error()
		out.Message = "Command rejected."
	} else {
		out.ActionKind = result.ActionKind
		out.TripID = result.TripID
		out.NeedsConfirmation = result.NeedsConfirmation
		out.SessionID = result.SessionID
		out.Executed = result.Executed
		out.Message = result.Message
	}

	body, err := json.Marshal(out)
	if err != nil {
		service.logger.Error(ctx, "command_result_encode_failed", "Failed to encode command result", err, nil)
		return
	}

	routingKey := contracts.RouteResultPrefix + msg.ContextID
	if err := service.pub.Publish(contracts.ExchangeDispatchTopic, routingKey, body); err != nil {
		service.logger.Error(ctx, "command_result_publish_failed",
			"Failed to publish command result", err,
			map[string]any{"routing_key": routingKey})
	}
}
