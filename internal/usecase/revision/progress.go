package revision

// Stage is a step of the revision state machine. Stages run strictly in
// declaration order; Humanizing and Linking may be skipped.
type Stage string

const (
	StageFetching          Stage = "fetching"
	StageAnalyzingOriginal Stage = "analyzing_original"
	StageBuildingRequest   Stage = "building_request"
	StageGenerating        Stage = "generating"
	StageHumanizing        Stage = "humanizing"
	StageLinking           Stage = "linking"
	StagePersisting        Stage = "persisting"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// Percentage is the progress reported when the stage starts.
// Failed reports the percentage of the stage that failed.
func (s Stage) Percentage() int {
	switch s {
	case StageFetching:
		return 5
	case StageAnalyzingOriginal:
		return 15
	case StageBuildingRequest:
		return 25
	case StageGenerating:
		return 40
	case StageHumanizing:
		return 65
	case StageLinking:
		return 80
	case StagePersisting:
		return 90
	case StageDone:
		return 100
	default:
		return 0
	}
}

// Progress is one event delivered to a ProgressFunc.
type Progress struct {
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
	Percentage int    `json:"percentage"`
}

// ProgressFunc receives progress events in stage order. It is called on the
// goroutine running Revise and must not block for long.
type ProgressFunc func(Progress)

func (f ProgressFunc) report(stage Stage, msg string) {
	if f == nil {
		return
	}
	f(Progress{Stage: stage, Message: msg, Percentage: stage.Percentage()})
}

func (f ProgressFunc) fail(at Stage, err error) {
	if f == nil {
		return
	}
	f(Progress{Stage: StageFailed, Message: err.Error(), Percentage: at.Percentage()})
}
