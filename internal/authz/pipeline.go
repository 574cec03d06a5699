package authz

import (
	"context"

	"github.com/magpress/magpress/internal/session"
)

// Verdict is the outcome of one authorization stage.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictDeny
	VerdictFault
)

// Decision is the result of an authorization stage: allow, deny with a
// reason, or fault with a cause. Faults are treated as deny by callers
// (fail-closed) but are distinguishable for logging.
type Decision struct {
	Verdict Verdict
	Reason  string
	Cause   error
}

func Allowed() Decision { return Decision{Verdict: VerdictAllow} }

func Denied(reason string) Decision { return Decision{Verdict: VerdictDeny, Reason: reason} }

func Faulted(cause error) Decision {
	return Decision{Verdict: VerdictFault, Reason: "resolution failed", Cause: cause}
}

// Request is the input to the authorization pipeline.
type Request struct {
	Path      string
	Principal *session.Principal
}

// Stage is one gate of the pipeline.
type Stage func(ctx context.Context, req Request) Decision

// Pipeline composes stages; evaluation short-circuits on the first
// non-allow decision. The perimeter stage answers "can you get in the
// building", the page stage "can you enter this room".
type Pipeline []Stage

func (p Pipeline) Evaluate(ctx context.Context, req Request) Decision {
	for _, stage := range p {
		if d := stage(ctx, req); d.Verdict != VerdictAllow {
			return d
		}
	}
	return Allowed()
}

// SessionStage requires an authenticated principal with at least one role.
func SessionStage() Stage {
	return func(_ context.Context, req Request) Decision {
		if req.Principal == nil {
			return Denied("no session")
		}
		if len(req.Principal.Roles) == 0 {
			return Denied("session has no roles")
		}
		return Allowed()
	}
}

// PageStage consults the decision cache, then the resolver. Both allow and
// deny results are cached; resolver failures are faults and are never
// cached.
func PageStage(res *Resolver, cache *DecisionCache) Stage {
	return func(ctx context.Context, req Request) Decision {
		if req.Principal == nil {
			return Denied("no session")
		}
		if req.Path == DashboardRoot {
			return Allowed()
		}

		key := DecisionKey(req.Principal.UserID, req.Path, req.Principal.Roles)
		if allowed, ok := cache.Get(key); ok {
			if allowed {
				return Allowed()
			}
			return Denied("page access denied")
		}

		allowed, err := res.Resolve(ctx, req.Path, req.Principal.Roles)
		if err != nil {
			return Faulted(err)
		}
		cache.Put(key, allowed)
		if !allowed {
			return Denied("page access denied")
		}
		return Allowed()
	}
}
