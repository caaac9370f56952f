package domain

// Step is the pipeline position of an AnswerState. The orchestrator advances
// through these in fixed order; guard steps may jump straight to finalized.
type Step string

const (
	StepStart      Step = "start"
	StepSmalltalk  Step = "guarded_smalltalk"
	StepGeometry   Step = "guarded_geometry"
	StepFollowup   Step = "guarded_followup"
	StepSummarized Step = "summarized"
	StepClassified Step = "classified"
	StepRetrieved  Step = "retrieved"
	StepGenerated  Step = "generated"
	StepFinalized  Step = "finalized"
)

// AnswerState is the mutable working record for one request. Created at
// request start, discarded at request end, never shared across requests.
type AnswerState struct {
	Step Step

	Question       string
	SessionObjects []DrawingObject

	Summary   SessionSummary
	Mode      QueryMode
	Retrieved []RetrievedChunk
	Guard     GuardResult

	Answer   string
	Evidence Evidence
}
