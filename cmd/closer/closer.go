package closer

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// Closer is Closer inferface
type Closer interface {
	Close() error
}

// Func adapts a close function without a result
type Func func()

// Close implements Closer
func (f Func) Close() error {
	f()
	return nil
}

// Manager closes the registered closers in reverse order, once
type Manager struct {
	sync.Mutex
	isClosed bool
	names    []string
	closers  []Closer
	logger   log.Logger
	done     chan struct{}
}

// NewManager returns a Manager
func NewManager(logger log.Logger) *Manager {
	return &Manager{
		logger: logger,
		done:   make(chan struct{}),
	}
}

// IsClosed returns it is closed or not
func (cm *Manager) IsClosed() bool {
	cm.Lock()
	defer cm.Unlock()
	return cm.isClosed
}

// Add adds a closer with a name
func (cm *Manager) Add(name string, c Closer) {
	cm.Lock()
	defer cm.Unlock()
	cm.names = append(cm.names, name)
	cm.closers = append(cm.closers, c)
}

// CloseAll closes all closers
func (cm *Manager) CloseAll() {
	cm.Lock()
	if cm.isClosed {
		cm.Unlock()
		return
	}
	cm.isClosed = true
	names, closers := cm.names, cm.closers
	cm.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		cm.logger.Info("Close", "name", names[i])
		if err := closers[i].Close(); err != nil {
			cm.logger.Warn("Close failed", "name", names[i], "err", err)
		}
	}
	close(cm.done)
}

// Wait waits close all
func (cm *Manager) Wait() {
	<-cm.done
}
