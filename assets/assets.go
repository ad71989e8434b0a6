package assets

import _ "embed"

// Transactions is the bundled sample dataset used when no other source is configured.
//
//go:embed transactions.json
var Transactions []byte
