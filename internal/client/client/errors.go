package client

import "errors"

var ErrUnavailable = errors.New("server unavailable")

// GenericFailureMessage is shown when a rejected request carries no
// "detail" or "message" field.
const GenericFailureMessage = "API request failed"
