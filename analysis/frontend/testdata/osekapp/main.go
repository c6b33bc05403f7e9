package main

const appMode = "OSDEFAULTAPPMODE"

var sharedResource = "RES_SHARED"

func waitFor(event string) {
	WaitEvent(event)
}

func withResource(f func()) {
	GetResource(sharedResource)
	f()
	ReleaseResource(sharedResource)
}

func taskName(name string) string {
	return name
}

func TaskA() {
	waitFor("EV_DATA")
	ActivateTask(taskName("TaskB"))
	TerminateTask()
}

func TaskB() {
	withResource(func() {})
	SetEvent("TaskA", 1)
	SetRelAlarm("AlarmTick", 10, 100)
	TerminateTask()
}

func AlarmCallback() {
	ActivateTask(taskName("TaskA"))
}

func main() {
	StartOS(appMode)
}
