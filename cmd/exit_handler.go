/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Priority defines order of defer functions execution
type Priority int

// Priorities of defer functions
const (
	Indifferent Priority = iota
	Last
)

// DeferFunction is a function called on exit with priority
type DeferFunction struct {
	callback func()
	priority Priority
}

// NewDeferFunction creates defer function with priority
func NewDeferFunction(callback func(), priority Priority) DeferFunction {
	return DeferFunction{callback: callback, priority: priority}
}

// ExitHandler calls defer functions on exit and passes SIGINT/SIGTERM to the command.
// Functions with Indifferent priority are called in reverse order of adding, the one with Last priority after them.
type ExitHandler struct {
	mu             sync.Mutex
	deferFunctions []DeferFunction
	notification   chan os.Signal
	once           sync.Once
	exit           func(code int)
}

// NewExitHandler is a constructor for ExitHandler
func NewExitHandler() *ExitHandler {
	return &ExitHandler{
		notification: make(chan os.Signal, 1),
		exit:         os.Exit,
	}
}

// AddDeferFunc appends new defer function (with priority) for execution
func (s *ExitHandler) AddDeferFunc(input DeferFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if input.priority == Last {
		for _, deferFunc := range s.deferFunctions {
			if deferFunc.priority == Last {
				panic("defer function with 'Last' priority has been already specified")
			}
		}
	}
	s.deferFunctions = append(s.deferFunctions, input)
}

// OnSignal starts goroutine that waits for SIGINT or SIGTERM and calls onSignal once signal received.
// Use it to cancel context of running command and let it exit normally.
func (s *ExitHandler) OnSignal(onSignal func(os.Signal)) {
	signal.Notify(s.notification, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-s.notification
		if ok {
			onSignal(sig)
		}
	}()
}

// ExitZero is a single point for exiting from the command with 0 code
func (s *ExitHandler) ExitZero() {
	s.GracefulExit()
	s.exit(0)
}

// ExitOne is a single point for exiting from the command with 1 code
func (s *ExitHandler) ExitOne() {
	s.GracefulExit()
	s.exit(1)
}

// GracefulExit stops signal handling and calls defer functions. Repeated calls do nothing
func (s *ExitHandler) GracefulExit() {
	s.once.Do(func() {
		signal.Stop(s.notification)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.executeDeferFunctions()
	})
}

func (s *ExitHandler) executeDeferFunctions() {
	var lastDefer *DeferFunction
	for i := len(s.deferFunctions) - 1; i >= 0; i-- {
		deferFunction := s.deferFunctions[i]
		if deferFunction.priority == Last {
			lastDefer = &s.deferFunctions[i]
			continue
		}
		deferFunction.callback()
	}
	// defer function with last priority has not been found
	if lastDefer == nil {
		return
	}
	lastDefer.callback()
}
