package main

// Stubs of the OSEK API. The analysis only needs their names and arguments.

func StartOS(mode string)                {}
func ActivateTask(task string)           {}
func TerminateTask()                     {}
func WaitEvent(event string)             {}
func SetEvent(task string, mask int)     {}
func GetResource(resource string)        {}
func ReleaseResource(resource string)    {}
func SetRelAlarm(alarm string, o, c int) {}
