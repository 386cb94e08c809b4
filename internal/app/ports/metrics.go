package ports

type SchedulerMetrics interface {
	RecordStart(actionID string)
	RecordStartRejected(reason string)
	RecordCompletion(actionID string)
	RecordCancellation(actionID string)
}
