package chat

import "errors"

// ErrNoAssistantService indicates that no assistant service was provided.
var ErrNoAssistantService = errors.New("assistant service is required")
