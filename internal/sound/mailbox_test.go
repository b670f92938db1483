package sound

import "testing"

func TestMailbox_FIFOAndClose(t *testing.T) {
	mb := newMailbox()
	var got []int
	for i := range 3 {
		if !mb.push(func() { got = append(got, i) }) {
			t.Fatalf("push %d rejected", i)
		}
	}
	for _, fn := range mb.drain() {
		fn()
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", got)
	}

	mb.close()
	if mb.push(func() {}) {
		t.Error("push accepted after close")
	}
	if !mb.isClosed() {
		t.Error("isClosed() = false")
	}
}
