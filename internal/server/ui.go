package server

import _ "embed"

// The UI owns the mapping from the display position a user types in chat
// ("complete task 3") to the database id of the task shown at that position.

//go:embed static/index.html
var indexHTML []byte
