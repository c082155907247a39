package auth

// Status is the outcome of an authentication attempt.
type Status int

const (
	// StatusFailed indicates the attempt failed for a reason other than bad
	// credentials, or that no mechanism produced an outcome.
	StatusFailed Status = iota
	// StatusInvalidCredentials indicates the presented secret did not match.
	StatusInvalidCredentials
	// StatusContinue indicates the mechanism needs another round trip.
	StatusContinue
	// StatusSuccess indicates the principal was authenticated.
	StatusSuccess
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case StatusContinue:
		return "CONTINUE"
	default:
		return "FAILED"
	}
}

// Result carries the outcome of one authentication attempt: a status, an
// optional principal, and ordered diagnostic messages. Mechanisms produce it;
// the orchestrator attaches it to the identity context. The zero value is a
// failed, principal-less result.
type Result struct {
	status    Status
	principal *Principal
	messages  []string
}

// NewResult creates an empty result with StatusFailed.
func NewResult() *Result {
	return &Result{}
}

// Status returns the outcome status.
func (r *Result) Status() Status { return r.status }

// Principal returns the authenticated principal, or nil.
func (r *Result) Principal() *Principal { return r.principal }

// Messages returns a copy of the ordered diagnostic messages.
func (r *Result) Messages() []string {
	out := make([]string, len(r.messages))
	copy(out, r.messages)

	return out
}

// AddMessage appends a diagnostic message.
func (r *Result) AddMessage(msg string) {
	r.messages = append(r.messages, msg)
}

// Success marks the result successful for the given principal.
func (r *Result) Success(p *Principal) {
	r.status = StatusSuccess
	r.principal = p
}

// InvalidCredentials marks the result as a bad-credentials outcome.
func (r *Result) InvalidCredentials() {
	r.status = StatusInvalidCredentials
	r.principal = nil
}

// Fail marks the result failed with a diagnostic message.
func (r *Result) Fail(msg string) {
	r.status = StatusFailed
	r.principal = nil

	if msg != "" {
		r.AddMessage(msg)
	}
}

// Copy returns an independent copy; mutating it does not affect the original.
func (r *Result) Copy() *Result {
	c := &Result{status: r.status, principal: r.principal}
	c.messages = append(c.messages, r.messages...)

	return c
}
