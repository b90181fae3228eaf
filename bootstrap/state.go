package bootstrap

import (
	"fmt"
	"sync"
	"time"
)

// Step names, in execution order.
const (
	StepCreateLogger                    = "CreateLogger"
	StepCreateModuleCatalog             = "CreateModuleCatalog"
	StepConfigureModuleCatalog          = "ConfigureModuleCatalog"
	StepCreateContainer                 = "CreateContainer"
	StepConfigureContainer              = "ConfigureContainer"
	StepConfigureServiceLocator         = "ConfigureServiceLocator"
	StepConfigureRegionAdapterMappings  = "ConfigureRegionAdapterMappings"
	StepConfigureDefaultRegionBehaviors = "ConfigureDefaultRegionBehaviors"
	StepRegisterFrameworkExceptionTypes = "RegisterFrameworkExceptionTypes"
	StepCreateShell                     = "CreateShell"
	StepSetRegionManager                = "SetRegionManager"
	StepUpdateRegions                   = "UpdateRegions"
	StepInitializeShell                 = "InitializeShell"
	StepInitializeModules               = "InitializeModules"
)

// StepRecord is one executed step.
type StepRecord struct {
	Name     string
	Index    int
	Duration time.Duration
	Err      error
}

// State records the steps a run executed, in order. A step that failed is
// recorded with its error and is always the last record.
type State struct {
	mu        sync.Mutex
	steps     []StepRecord
	completed bool
}

func (s *State) record(r StepRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, r)
}

func (s *State) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
}

// Steps returns the executed step names in order.
func (s *State) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.steps))
	for i, r := range s.steps {
		names[i] = r.Name
	}
	return names
}

// Records returns the executed steps with timings.
func (s *State) Records() []StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StepRecord(nil), s.steps...)
}

// Executed reports whether the named step ran.
func (s *State) Executed(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.steps {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Completed reports whether the whole sequence finished.
func (s *State) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// StepError reports the step a run failed at. It unwraps to the step's error.
type StepError struct {
	Step  string
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("bootstrap: step %d (%s) failed: %v", e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
