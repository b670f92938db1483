package sound

import (
	"sort"

	"github.com/samber/lo"
)

// record is a live, prepared player.
type record struct {
	key      int
	backend  Backend
	listener *listener
	volume   float64
	speed    float64
}

func (r *record) loop() bool { return r.listener.loop }

// pool maps keys to records and keeps the listener registry alongside.
// Both tables change together and only on the control goroutine.
type pool struct {
	records   map[int]*record
	listeners map[int]*listener
}

func newPool() *pool {
	return &pool{
		records:   make(map[int]*record),
		listeners: make(map[int]*listener),
	}
}

// insert registers rec, overwriting any record under the same key.
func (p *pool) insert(rec *record) {
	p.records[rec.key] = rec
}

func (p *pool) get(key int) (*record, bool) {
	rec, ok := p.records[key]
	return rec, ok
}

// remove deletes the record and its listener. Removing an absent key is a
// no-op.
func (p *pool) remove(key int) {
	delete(p.records, key)
	delete(p.listeners, key)
}

func (p *pool) register(l *listener) {
	p.listeners[l.key] = l
}

func (p *pool) listener(key int) (*listener, bool) {
	l, ok := p.listeners[key]
	return l, ok
}

// unregister drops the listener for key if it is still l.
func (p *pool) unregister(l *listener) {
	if cur, ok := p.listeners[l.key]; ok && cur == l {
		delete(p.listeners, l.key)
	}
}

// current reports whether l is the registered listener for its key.
func (p *pool) current(l *listener) bool {
	cur, ok := p.listeners[l.key]
	return ok && cur == l
}

func (p *pool) countExcept(key int) int {
	n := len(p.records)
	if _, ok := p.records[key]; ok {
		n--
	}
	return n
}

// keysExcept returns every pooled key but key, in ascending order.
func (p *pool) keysExcept(key int) []int {
	keys := lo.Filter(lo.Keys(p.records), func(k int, _ int) bool { return k != key })
	sort.Ints(keys)
	return keys
}

func (p *pool) keys() []int {
	keys := lo.Keys(p.records)
	sort.Ints(keys)
	return keys
}

func (p *pool) len() int { return len(p.records) }
