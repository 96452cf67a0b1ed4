package loader

type Outcome string

const (
	OutcomeIdle      Outcome = "idle"
	OutcomeFailed    Outcome = "failed"
	OutcomeEmpty     Outcome = "empty"
	OutcomeReplaying Outcome = "replaying"
)

type Request struct {
	SessionID string
}

type Response struct {
	Outcome      Outcome
	EventCount   int
	WorkspaceDir string
}
