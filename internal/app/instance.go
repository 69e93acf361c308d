package app

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/sagago/internal/adaptor"
)

// ErrAlreadyInitialized is returned by RegisterModule once the process
// instance exists.
var ErrAlreadyInitialized = errors.New("runtime already initialized")

var (
	instanceMu      sync.Mutex
	instanceOnce    sync.Once
	instance        *App
	instanceErr     error
	instanceReady   bool
	instanceModules []adaptor.Module
)

// Instance returns the process-wide App, building it on first call. Later
// and concurrent callers get the same pointer, or the same error.
func Instance() (*App, error) {
	instanceOnce.Do(func() {
		instanceMu.Lock()
		extra := instanceModules
		instanceReady = true
		instanceMu.Unlock()

		instance, instanceErr = New(context.Background(), withExtraModules(extra...))
	})
	return instance, instanceErr
}

// RegisterModule queues a compiled module to be loaded after the built-in
// ones when the process instance is created.
func RegisterModule(m adaptor.Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instanceReady {
		return ErrAlreadyInitialized
	}
	instanceModules = append(instanceModules, m)
	return nil
}

// resetInstance clears the process instance. Tests only.
func resetInstance() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instanceOnce = sync.Once{}
	instance, instanceErr = nil, nil
	instanceReady = false
	instanceModules = nil
}
