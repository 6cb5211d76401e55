package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionRideRequested     = "ride_requested"
	ActionOfferFanout       = "offer_fanout"
	ActionOfferResponse     = "offer_response"
	ActionOfferDeadline     = "offer_deadline"
	ActionRideCancelled     = "ride_cancelled"
	ActionHeartbeatTimeout  = "heartbeat_timeout"
	ActionSessionRegistered = "session_registered"
	ActionSessionRemoved    = "session_removed"
	ActionRideArchived      = "ride_archived"
)
