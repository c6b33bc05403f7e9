// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

func handlerArg(i int) *int { return &i }

// Target kind names used by the built-in catalogs
const (
	targetRTOS      = "rtos"
	targetTask      = "task"
	targetTimer     = "timer"
	targetResource  = "resource"
	targetSemaphore = "semaphore"
	targetQueue     = "queue"
	targetQueueSet  = "queueset"
	targetEvent     = "event"
	targetBuffer    = "buffer"
	targetCounter   = "counter"
)

var freeRTOSSyscalls = []SyscallSpec{
	// creation
	{Name: "xTaskCreate", Type: "create", Targets: []string{targetTask}, HandlerArg: handlerArg(1)},
	{Name: "xTaskCreateStatic", Type: "create", Targets: []string{targetTask}, HandlerArg: handlerArg(1)},
	{Name: "xQueueGenericCreate", Type: "create", Targets: []string{targetQueue, targetSemaphore}},
	{Name: "xQueueGenericCreateStatic", Type: "create", Targets: []string{targetQueue, targetSemaphore}},
	{Name: "xQueueCreateMutex", Type: "create", Targets: []string{targetResource}},
	{Name: "xQueueCreateMutexStatic", Type: "create", Targets: []string{targetResource}},
	{Name: "xQueueCreateCountingSemaphore", Type: "create", Targets: []string{targetSemaphore}},
	{Name: "xQueueCreateSet", Type: "create", Targets: []string{targetQueueSet}},
	{Name: "xTimerCreate", Type: "create", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "xTimerCreateStatic", Type: "create", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "xEventGroupCreate", Type: "create", Targets: []string{targetEvent}},
	{Name: "xStreamBufferGenericCreate", Type: "create", Targets: []string{targetBuffer}},
	{Name: "xCoRoutineCreate", Type: "create", Targets: []string{"coroutine"}},

	// tasks and scheduler
	{Name: "vTaskDelete", Type: "destroy", Targets: []string{targetTask, targetRTOS}, HandlerArg: handlerArg(0)},
	{Name: "vTaskSuspend", Type: "schedule", Targets: []string{targetTask, targetRTOS}, HandlerArg: handlerArg(0)},
	{Name: "vTaskResume", Type: "activate", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "xTaskResumeFromISR", Type: "activate", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "vTaskPrioritySet", Type: "schedule", Targets: []string{targetTask, targetRTOS}, HandlerArg: handlerArg(0)},
	{Name: "vTaskDelay", Type: "schedule", Targets: []string{targetRTOS}},
	{Name: "vTaskDelayUntil", Type: "schedule", Targets: []string{targetRTOS}},
	{Name: "taskYIELD", Type: "schedule", Targets: []string{targetRTOS}},
	{Name: "vTaskStartScheduler", Type: "start-scheduler", Targets: []string{targetRTOS}},
	{Name: "vTaskEndScheduler", Type: "end-scheduler", Targets: []string{targetRTOS}},
	{Name: "vTaskSuspendAll", Type: "disable", Targets: []string{targetRTOS}},
	{Name: "xTaskResumeAll", Type: "enable", Targets: []string{targetRTOS}},
	{Name: "vPortEnterCritical", Type: "disable", Targets: []string{targetRTOS}},
	{Name: "vPortExitCritical", Type: "enable", Targets: []string{targetRTOS}},

	// task notifications
	{Name: "xTaskGenericNotify", Type: "commit", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "xTaskGenericNotifyFromISR", Type: "commit", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "vTaskNotifyGiveFromISR", Type: "commit", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "xTaskNotifyWait", Type: "wait", Targets: []string{targetRTOS}},
	{Name: "ulTaskNotifyTake", Type: "wait", Targets: []string{targetRTOS}},

	// queues, semaphores and mutexes
	{Name: "xQueueGenericSend", Type: "commit",
		Targets: []string{targetQueue, targetSemaphore, targetResource}, HandlerArg: handlerArg(0)},
	{Name: "xQueueGenericSendFromISR", Type: "commit",
		Targets: []string{targetQueue, targetSemaphore, targetResource}, HandlerArg: handlerArg(0)},
	{Name: "xQueueGiveFromISR", Type: "commit", Targets: []string{targetSemaphore}, HandlerArg: handlerArg(0)},
	{Name: "xQueueReceive", Type: "receive", Targets: []string{targetQueue}, HandlerArg: handlerArg(0)},
	{Name: "xQueueReceiveFromISR", Type: "receive", Targets: []string{targetQueue}, HandlerArg: handlerArg(0)},
	{Name: "xQueuePeek", Type: "receive", Targets: []string{targetQueue}, HandlerArg: handlerArg(0)},
	{Name: "xQueueSemaphoreTake", Type: "receive",
		Targets: []string{targetSemaphore, targetResource}, HandlerArg: handlerArg(0)},
	{Name: "xQueueTakeMutexRecursive", Type: "receive", Targets: []string{targetResource}, HandlerArg: handlerArg(0)},
	{Name: "xQueueGiveMutexRecursive", Type: "commit", Targets: []string{targetResource}, HandlerArg: handlerArg(0)},
	{Name: "vQueueDelete", Type: "destroy",
		Targets: []string{targetQueue, targetSemaphore, targetResource}, HandlerArg: handlerArg(0)},

	// queue sets
	{Name: "xQueueAddToSet", Type: "add", Targets: []string{targetQueueSet}, HandlerArg: handlerArg(1)},
	{Name: "xQueueRemoveFromSet", Type: "destroy", Targets: []string{targetQueueSet}, HandlerArg: handlerArg(1)},
	{Name: "xQueueSelectFromSet", Type: "receive", Targets: []string{targetQueueSet}, HandlerArg: handlerArg(0)},

	// software timers
	{Name: "xTimerGenericCommand", Type: "commit", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},

	// event groups
	{Name: "xEventGroupSetBits", Type: "commit", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},
	{Name: "xEventGroupClearBits", Type: "commit", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},
	{Name: "xEventGroupWaitBits", Type: "wait", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},
	{Name: "xEventGroupSync", Type: "wait", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},

	// stream and message buffers
	{Name: "xStreamBufferSend", Type: "commit", Targets: []string{targetBuffer}, HandlerArg: handlerArg(0)},
	{Name: "xStreamBufferReceive", Type: "receive", Targets: []string{targetBuffer}, HandlerArg: handlerArg(0)},
}

var osekSyscalls = []SyscallSpec{
	{Name: "ActivateTask", Type: "activate", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "ChainTask", Type: "activate", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "TerminateTask", Type: "destroy", Targets: []string{targetRTOS}},
	{Name: "Schedule", Type: "schedule", Targets: []string{targetRTOS}},
	{Name: "GetResource", Type: "receive", Targets: []string{targetResource}, HandlerArg: handlerArg(0)},
	{Name: "ReleaseResource", Type: "commit", Targets: []string{targetResource}, HandlerArg: handlerArg(0)},
	{Name: "SetEvent", Type: "commit", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "ClearEvent", Type: "commit", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},
	{Name: "GetEvent", Type: "receive", Targets: []string{targetTask}, HandlerArg: handlerArg(0)},
	{Name: "WaitEvent", Type: "wait", Targets: []string{targetEvent}, HandlerArg: handlerArg(0)},
	{Name: "SetRelAlarm", Type: "commit", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "SetAbsAlarm", Type: "commit", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "CancelAlarm", Type: "commit", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "GetAlarm", Type: "receive", Targets: []string{targetTimer}, HandlerArg: handlerArg(0)},
	{Name: "IncrementCounter", Type: "commit", Targets: []string{targetCounter}, HandlerArg: handlerArg(0)},
	{Name: "StartOS", Type: "start-scheduler", Targets: []string{targetRTOS}},
	{Name: "ShutdownOS", Type: "end-scheduler", Targets: []string{targetRTOS}},
	{Name: "DisableAllInterrupts", Type: "disable", Targets: []string{targetRTOS}},
	{Name: "EnableAllInterrupts", Type: "enable", Targets: []string{targetRTOS}},
	{Name: "SuspendAllInterrupts", Type: "disable", Targets: []string{targetRTOS}},
	{Name: "ResumeAllInterrupts", Type: "enable", Targets: []string{targetRTOS}},
	{Name: "SuspendOSInterrupts", Type: "disable", Targets: []string{targetRTOS}},
	{Name: "ResumeOSInterrupts", Type: "enable", Targets: []string{targetRTOS}},
}

// BuiltinSyscalls returns the built-in system call catalog of the OS variant. The returned slice is a copy.
func BuiltinSyscalls(os OSVariant) []SyscallSpec {
	var src []SyscallSpec
	switch os {
	case OSEK:
		src = osekSyscalls
	case FreeRTOS:
		src = freeRTOSSyscalls
	}
	res := make([]SyscallSpec, len(src))
	copy(res, src)
	return res
}
