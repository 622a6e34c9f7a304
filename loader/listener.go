package loader

import "github.com/jonwraymond/imageloader/display"

// Listener observes every terminal delivery a loader produces,
// including suppressed and failed ones. Preview deliveries are not
// terminal and are not reported.
//
// Listeners run synchronously on the loader's pipeline goroutine after
// a delivery resolves, so they must return promptly. Listeners are
// compared by identity: register a pointer and pass the same pointer
// to deregister.
type Listener interface {
	OnDelivery(d display.Delivery)
}

// RegisterListener adds ln to the delivery fan-out. Registering a
// listener that is already present is a no-op. The loader holds a
// plain reference; callers deregister when they are done.
func (l *Loader) RegisterListener(ln Listener) {
	if ln == nil {
		return
	}
	l.listenerMu.Lock()
	defer l.listenerMu.Unlock()
	for _, existing := range l.listeners {
		if existing == ln {
			return
		}
	}
	l.listeners = append(l.listeners, ln)
}

// DeregisterListener removes ln from the delivery fan-out. Removing a
// listener that was never registered is a no-op.
func (l *Loader) DeregisterListener(ln Listener) {
	l.listenerMu.Lock()
	defer l.listenerMu.Unlock()
	for i, existing := range l.listeners {
		if existing == ln {
			l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
			return
		}
	}
}

func (l *Loader) notify(d display.Delivery) {
	l.listenerMu.RLock()
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	l.listenerMu.RUnlock()

	for _, ln := range listeners {
		ln.OnDelivery(d)
	}
}
