package router

import "sync"

// Location holds the current URL fragment and notifies subscribers when it
// changes. Notifications carry no payload; subscribers read Fragment. A burst
// of changes may collapse into one notification, and a writer never blocks on
// a slow subscriber.
type Location struct {
	mu       sync.Mutex
	fragment string
	subs     map[int]chan struct{}
	nextID   int
}

// NewLocation returns a Location starting at fragment.
func NewLocation(fragment string) *Location {
	return &Location{fragment: FragmentOf(fragment), subs: map[int]chan struct{}{}}
}

// Fragment returns the current fragment.
func (l *Location) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// Set changes the fragment from a link or fragment and notifies subscribers.
// It accepts full share links.
func (l *Location) Set(link string) {
	l.update(FragmentOf(link))
}

// Clear removes the fragment.
func (l *Location) Clear() {
	l.update("")
}

func (l *Location) update(fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fragment == fragment {
		return
	}
	l.fragment = fragment
	for _, ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel signalled after every change and a function
// that ends the subscription and closes the channel.
func (l *Location) Subscribe() (<-chan struct{}, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan struct{}, 1)
	l.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
			close(ch)
		})
	}
}
