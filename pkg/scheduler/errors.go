package scheduler

// Code is a stable machine-readable result code. Automation failures are
// always returned as data carrying one of these codes, never propagated as
// uncaught faults past the engine boundary.
type Code string

const (
	CodeNoValidMonths               Code = "no_valid_months"
	CodeInvalidDate                 Code = "invalid_date"
	CodeInvalidTime                 Code = "invalid_time"
	CodeNextButtonNotFound          Code = "next_button_not_found"
	CodeAdditionalQuestionsRequired Code = "additional_questions_required"
	CodeFormSubmissionFailed        Code = "form_submission_failed"
	CodeConfirmationNotFound        Code = "confirmation_not_found"
	CodeUnexpectedError             Code = "unexpected_error"
)

// State identifies a phase of the booking transaction.
type State int

const (
	StateStart State = iota
	StateDateSelect
	StateTimeSelect
	StateAdvance
	StateNameEmailFill
	StateQuestionDiscovery
	StateSubmit
	StateConfirm
	StateExtract
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateStart:             "start",
	StateDateSelect:        "date_select",
	StateTimeSelect:        "time_select",
	StateAdvance:           "advance",
	StateNameEmailFill:     "name_email_fill",
	StateQuestionDiscovery: "question_discovery",
	StateSubmit:            "submit",
	StateConfirm:           "confirm",
	StateExtract:           "extract",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Classify maps a failure at a given transaction state to a result code.
// It is a pure function; callers attach the underlying error text as detail.
//
// Failures at or after Confirm map to codes that signal the remote booking
// may already have committed: the confirmation heading never appearing is
// confirmation_not_found, and anything later is unexpected_error.
func Classify(state State, err error) Code {
	switch state {
	case StateDateSelect:
		return CodeInvalidDate
	case StateTimeSelect:
		return CodeInvalidTime
	case StateAdvance:
		return CodeNextButtonNotFound
	case StateSubmit:
		return CodeFormSubmissionFailed
	case StateConfirm:
		return CodeConfirmationNotFound
	default:
		return CodeUnexpectedError
	}
}

// Status partitions booking outcomes for callers.
type Status string

const (
	// StatusSuccess carries a populated Confirmation.
	StatusSuccess Status = "success"

	// StatusRecoverable is a normal mid-protocol pause: the transaction
	// needs answers for the returned questions and should be re-invoked.
	StatusRecoverable Status = "recoverable"

	// StatusFatal is terminal for this transaction. Retrying is an
	// orchestrator policy decision.
	StatusFatal Status = "fatal"
)

// Outcome is the tagged result of one booking transaction. Exactly one of
// Confirmation (success) or Questions (recoverable) is populated; fatal
// outcomes carry only Code and Detail.
type Outcome struct {
	Status       Status
	Code         Code
	Detail       string
	Questions    []QuestionField
	Confirmation *Confirmation
}

// IsSuccess reports whether the booking completed with a confirmation.
func (o Outcome) IsSuccess() bool {
	return o.Status == StatusSuccess
}

// NeedsAnswers reports whether the caller must supply question answers and
// re-invoke the booking.
func (o Outcome) NeedsAnswers() bool {
	return o.Status == StatusRecoverable && o.Code == CodeAdditionalQuestionsRequired
}
