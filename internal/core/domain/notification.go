package domain

// Outcome classifies the result of one decode-and-notify invocation.
type Outcome string

const (
	OutcomeDelivered      Outcome = "delivered"
	OutcomeTargetNotFound Outcome = "target_not_found"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
)

// Dispatch failure details with fixed wording, matched on by the ingress
// adapters when choosing a user-facing reply.
const (
	DetailUnauthorized = "unauthorized"
	DetailNoCode       = "no code found"
)

// DispatchResult is the ephemeral outcome returned to the pipeline caller.
// For Delivered the detail is the decoded payload; for TargetNotFound it is
// the payload that missed; for DispatchFailed it names the failure.
type DispatchResult struct {
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}
