package framework

// Observer receives the lifecycle events of a run. The Runner never calls an Observer from more
// than one goroutine at a time.
type Observer interface {
	OnBegin(totalTests, workers int)
	OnTestBegin(id TestID)
	OnTestEnd(outcome TestOutcome)
	OnEnd(status RunStatus)
	OnError(err error)
}

// Observers fans every event out to each of its members in order.
type Observers []Observer

func (o Observers) OnBegin(totalTests, workers int) {
	for _, x := range o {
		x.OnBegin(totalTests, workers)
	}
}

func (o Observers) OnTestBegin(id TestID) {
	for _, x := range o {
		x.OnTestBegin(id)
	}
}

func (o Observers) OnTestEnd(outcome TestOutcome) {
	for _, x := range o {
		x.OnTestEnd(outcome)
	}
}

func (o Observers) OnEnd(status RunStatus) {
	for _, x := range o {
		x.OnEnd(status)
	}
}

func (o Observers) OnError(err error) {
	for _, x := range o {
		x.OnError(err)
	}
}

type nullObserver struct{}

func (n nullObserver) OnBegin(int, int)      {}
func (n nullObserver) OnTestBegin(TestID)    {}
func (n nullObserver) OnTestEnd(TestOutcome) {}
func (n nullObserver) OnEnd(RunStatus)       {}
func (n nullObserver) OnError(error)         {}
