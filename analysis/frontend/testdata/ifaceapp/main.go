package main

type waiter interface {
	Wait(event string)
}

type eventWaiter struct{}

func (w eventWaiter) Wait(event string) {
	WaitEvent(event)
}

func TaskA() {
	var w waiter = eventWaiter{}
	w.Wait("EV_DATA")
	TerminateTask()
}

func main() {
	StartOS("OSDEFAULTAPPMODE")
}
