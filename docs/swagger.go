package docs

// @title           Ride Dispatch Coordinator API
// @version         1.0
// @description     Coordinates ride requests, offer fan-out to nearby drivers, accept/reject arbitration and outcome delivery over WebSocket.

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
