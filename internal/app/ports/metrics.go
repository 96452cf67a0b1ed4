package ports

type PlaybackMode string

const (
	PlaybackTimed     PlaybackMode = "timed"
	PlaybackImmediate PlaybackMode = "immediate"
)

type PlaybackMetrics interface {
	RecordEmitted(mode PlaybackMode)
	RecordCancelled()
	RecordCompleted()
	RecordFetchFailure()
}
