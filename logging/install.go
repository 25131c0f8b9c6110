package logging

import (
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"
)

var ErrAlreadyInstalled = errors.New("logging: logger already installed")

// Installer sets the process-wide logger. It may be used once; a second
// Install panics with ErrAlreadyInstalled.
type Installer struct {
	installed  atomic.Bool
	setDefault func(*slog.Logger)
}

// NewInstaller returns an Installer calling setDefault on install.
// A nil setDefault means slog.SetDefault.
func NewInstaller(setDefault func(*slog.Logger)) *Installer {
	if setDefault == nil {
		setDefault = slog.SetDefault
	}
	return &Installer{setDefault: setDefault}
}

func (i *Installer) Install(log *slog.Logger) {
	if !i.installed.CompareAndSwap(false, true) {
		panic(ErrAlreadyInstalled)
	}
	i.setDefault(log)
}

func (i *Installer) Installed() bool {
	return i.installed.Load()
}

var global = NewInstaller(slog.SetDefault)

// Install sets log as the slog default for the whole process.
func Install(log *slog.Logger) {
	global.Install(log)
}

// Global is the Installer behind Install.
func Global() *Installer {
	return global
}
