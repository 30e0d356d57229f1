package fakefinger

import "testing"

func TestTrackerCount(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Tracker)
		want  Count
	}{
		{"nothing asserted", func(tr *Tracker) {}, 0},
		{"touch only", func(tr *Tracker) { tr.SetTouch(true) }, 1},
		{"finger", func(tr *Tracker) { tr.SetTouch(true); tr.SetFinger(true) }, 1},
		{"double", func(tr *Tracker) { tr.SetTouch(true); tr.SetDouble(true) }, 2},
		{"triple", func(tr *Tracker) { tr.SetTouch(true); tr.SetTriple(true) }, 3},
		{"quad", func(tr *Tracker) { tr.SetTouch(true); tr.SetQuad(true) }, 4},
		{"quint overflow", func(tr *Tracker) { tr.SetTouch(true); tr.SetQuint(true) }, Overflow},
		{"quad wins over double", func(tr *Tracker) {
			tr.SetTouch(true)
			tr.SetDouble(true)
			tr.SetQuad(true)
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Tracker
			tt.setup(&tr)
			if got := tr.Count(); got != tt.want {
				t.Errorf("Count() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerReleaseTouchClearsOverflow(t *testing.T) {
	var tr Tracker
	tr.SetTouch(true)
	tr.SetQuint(true)
	if tr.Count() != Overflow {
		t.Fatalf("Count() = %v, want Overflow", tr.Count())
	}
	tr.SetTouch(false)
	if got := tr.Count(); got != 0 {
		t.Errorf("Count() after release = %v, want 0", got)
	}
}

func TestTrackerDoubleClearsOverflow(t *testing.T) {
	var tr Tracker
	tr.SetTouch(true)
	tr.SetQuint(true)
	tr.SetDouble(true)
	if got := tr.Count(); got != 2 {
		t.Errorf("Count() = %v, want 2", got)
	}
}

func TestMultipleAsserted(t *testing.T) {
	var tr Tracker
	tr.SetFinger(true)
	if tr.MultipleAsserted() {
		t.Fatal("single tool bit should not be flagged")
	}
	tr.SetDouble(true)
	if !tr.MultipleAsserted() {
		t.Fatal("two simultaneous tool bits should be flagged")
	}
}
