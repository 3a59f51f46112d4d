package linera

import "fmt"

// GraphQLError represents an error returned by the node inside a
// well-formed GraphQL response.
type GraphQLError struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("linera: graphql: %s", e.Message)
}

// HTTPError represents a non-200 HTTP response from the node.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("linera: HTTP %d: %s", e.StatusCode, e.Body)
}

// SubscriptionError indicates a failure frame on an active subscription.
type SubscriptionError struct {
	ID      string
	Message string
}

func (e *SubscriptionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("linera: subscription: %s", e.Message)
	}
	return fmt.Sprintf("linera: subscription %s: %s", e.ID, e.Message)
}
