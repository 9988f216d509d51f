package ratelimit

import (
	"context"
	"fmt"
)

// Exceeded describes the rule a request broke.
type Exceeded struct {
	Bucket string
	Rule   Rule
	Count  int64
}

// Limiter enforces sliding-window limits per client.
type Limiter struct {
	store  Store
	policy Policy
}

// NewLimiter creates a limiter backed by store.
func NewLimiter(store Store, policy Policy) *Limiter {
	return &Limiter{
		store:  store,
		policy: policy,
	}
}

// Check records a hit for client against ep and returns the first rule that is
// exceeded, or nil when the request is allowed.
func (l *Limiter) Check(ctx context.Context, client string, ep Endpoint) (*Exceeded, error) {
	if ep.Disabled {
		return nil, nil
	}

	bucket, rules := l.rulesFor(ep)

	for _, rule := range rules {
		key := fmt.Sprintf("%s:%s:%d", client, bucket, rule.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, rule.Window)
		if err != nil {
			return nil, fmt.Errorf("record hit: %w", err)
		}

		if count > rule.Max {
			return &Exceeded{Bucket: bucket, Rule: rule, Count: count}, nil
		}
	}

	return nil, nil
}

// rulesFor returns the counter bucket and rules applying to ep.
// Custom rules get a bucket per route template so they do not share class counters.
func (l *Limiter) rulesFor(ep Endpoint) (string, []Rule) {
	if len(ep.Rules) > 0 {
		return "route:" + ep.Path, ep.Rules
	}

	return string(ep.Class), l.policy[ep.Class]
}
