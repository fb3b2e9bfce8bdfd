package exchange

import "fmt"

// Name of the venue, used as ExchangeName in global ids.
const Name = "gdax"

// Environment selects a set of endpoints.
type Environment string

// Environments.
const (
	Production Environment = "production"
	Sandbox    Environment = "sandbox"
)

// Endpoints of one environment.
type Endpoints struct {
	API       string
	Websocket string
}

var endpoints = map[Environment]Endpoints{
	Production: {
		API:       "https://api.gdax.com",
		Websocket: "wss://ws-feed.gdax.com",
	},
	Sandbox: {
		API:       "https://api-public.sandbox.gdax.com",
		Websocket: "wss://ws-feed-public.sandbox.gdax.com",
	},
}

// EndpointsOf returns the endpoints of env.
func EndpointsOf(env Environment) (Endpoints, error) {
	e, ok := endpoints[env]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown environment %q", env)
	}
	return e, nil
}

// DefaultAPI is the production REST endpoint.
func DefaultAPI() string {
	return endpoints[Production].API
}

// DefaultWebsocket is the production feed endpoint.
func DefaultWebsocket() string {
	return endpoints[Production].Websocket
}
