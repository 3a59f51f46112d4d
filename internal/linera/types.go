package linera

import "encoding/json"

// --- Response envelope ---

// Response is the top-level envelope for GraphQL responses from the node.
type Response struct {
	Errors []GraphQLError  `json:"errors,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// HasError returns true if the response contains API errors.
func (r *Response) HasError() bool {
	return len(r.Errors) > 0
}

// FirstError returns the first error, or nil if none.
func (r *Response) FirstError() *GraphQLError {
	if r.HasError() {
		return &r.Errors[0]
	}
	return nil
}

// --- GraphQL request ---

// Request is the standard structure for GraphQL calls.
type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Query         string         `json:"query"`
}

// --- Notifications ---

// Notification is a message pushed by the node's notification stream.
// The payload is opaque apart from the block reason; consumers probe
// Reason.NewBlock and ignore everything else.
type Notification struct {
	ChainID string          `json:"chain_id"`
	Reason  Reason          `json:"reason"`
	Raw     json.RawMessage `json:"-"`
}

// Reason describes why a notification was emitted.
// Only NewBlock is interpreted by this client.
type Reason struct {
	NewBlock *NewBlock `json:"NewBlock,omitempty"`
}

// NewBlock carries the progress markers for a freshly produced block.
type NewBlock struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
}

// --- graphql-transport-ws frames ---

// wsMessage is a frame of the graphql-transport-ws subprotocol.
type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)
