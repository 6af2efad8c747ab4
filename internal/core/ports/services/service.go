package services

// MetricsSink receives workflow counters. Injected rather than global so the
// engine's correctness boundary stays free of process-wide state; the
// prometheus implementation lives in middleware, tests use the noop.
type MetricsSink interface {
	TransitionRecorded(action string)
	IdempotencyReplay()
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) TransitionRecorded(string) {}
func (NoopMetrics) IdempotencyReplay()        {}

// ServiceContainer bundles all service facades for handler registration.
type ServiceContainer struct {
	Request      RequestSvcFacade
	Distribution DistributionSvcFacade
	Splitter     SplitterSvcFacade
	SubRegistrar SubRegistrarSvcFacade
	Export       ExportSvcFacade
	User         UserSvcFacade
	Article      ArticleSvcFacade
	Idempotency  IdempotencySvcFacade
}
