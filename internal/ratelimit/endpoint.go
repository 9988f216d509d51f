package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey is the huma operation metadata key holding an Endpoint.
const MetadataKey = "rateLimit"

// Endpoint is the per-operation rate limit configuration.
type Endpoint struct {
	// Path identifies the operation's own counters when Rules is set.
	Path string
	// Class selects policy rules. Empty means derive it from the HTTP method.
	Class Class
	// Rules replace the policy rules for this operation only.
	Rules []Rule
	// Disabled skips rate limiting.
	Disabled bool
}

// ResolveEndpoint reads the Endpoint attached to op, filling Path and Class.
// Operations without metadata fall back to method-based classification.
func ResolveEndpoint(op *huma.Operation, method string) Endpoint {
	var ep Endpoint

	if op != nil {
		if cfg, ok := op.Metadata[MetadataKey].(Endpoint); ok {
			ep = cfg
		}

		ep.Path = op.Path
	}

	if ep.Class == "" {
		ep.Class = ClassForMethod(method)
	}

	return ep
}
