package client

// Exchange API endpoints.
const (
	EndpointTime = "/time"

	EndpointCreateAPIKey = "/auth/api-key"
	EndpointDeriveAPIKey = "/auth/derive-api-key"

	EndpointPostOrder          = "/order"
	EndpointCancelOrder        = "/order"
	EndpointCancelOrders       = "/orders"
	EndpointCancelAll          = "/cancel-all"
	EndpointCancelMarketOrders = "/cancel-market-orders"
	EndpointOpenOrders         = "/data/orders"
)

// endCursor marks the last page of a cursor-paginated listing.
const endCursor = "LTE="
