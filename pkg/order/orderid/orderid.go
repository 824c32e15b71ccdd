// Package orderid generates the business keys of orders and refund requests.
package orderid

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	orderPrefix   = "BO"
	requestPrefix = "RF"
)

// Generator returns a new identifier on each call.
type Generator func() string

// NewOrderNo returns a sortable order number, e.g. BO01J9Z3K8...
func NewOrderNo() string {
	return orderPrefix + ulid.Make().String()
}

// NewOutRequestNo returns a fresh idempotency token for one refund request to the payment service.
func NewOutRequestNo() string {
	return requestPrefix + ulid.Make().String()
}

// IsOrderNo does a cheap shape check on user input.
func IsOrderNo(s string) bool {
	if !strings.HasPrefix(s, orderPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimPrefix(s, orderPrefix))
	return err == nil
}
