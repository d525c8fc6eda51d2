package contracts

// Exchanges
const (
	ExchangeDispatchTopic = "dispatch_topic"
)

// Queues
const (
	QueueDispatchCommands = "dispatch_commands"
	QueueDispatchResults  = "dispatch_results"
)

// Routing patterns
const (
	RouteCommandPrefix = "dispatch.command." // {context_id}
	RouteResultPrefix  = "dispatch.result."  // {context_id}
)
