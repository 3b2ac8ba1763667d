package schema

import "github.com/hamba/avro/v2"

const CartEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "cart",
	"name": "cart_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "kind", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "delta", "type": "long"},
		{"name": "at", "type": "long"}
	]
}`

// A CartEventV1 is a quantity change of a single product in a session cart.
//
// At is unix time in milliseconds.
type CartEventV1 struct {
	SessionID string `avro:"session_id"`
	Kind      string `avro:"kind"`
	ProductID string `avro:"product_id"`
	Delta     int64  `avro:"delta"`
	At        int64  `avro:"at"`
}

// CartEventV1Avro panics on invalid schema text.
func CartEventV1Avro() avro.Schema {
	return avro.MustParse(CartEventSchemaTextV1)
}
