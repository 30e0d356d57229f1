package timer

import "testing"

func TestSetAndExpireOrder(t *testing.T) {
	var q Queue
	var fired []string

	a := q.Init("a", func(int64) { fired = append(fired, "a") })
	b := q.Init("b", func(int64) { fired = append(fired, "b") })
	c := q.Init("c", func(int64) { fired = append(fired, "c") })

	q.Set(a, 300)
	q.Set(b, 100)
	q.Set(c, 200)

	q.Expire(1000)

	want := []string{"b", "c", "a"}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired = %v, want %v", fired, want)
		}
	}
}

func TestExpireOnlyFiresDueTimers(t *testing.T) {
	var q Queue
	var fired int
	a := q.Init("a", func(int64) { fired++ })
	q.Set(a, 500)

	q.Expire(400)
	if fired != 0 {
		t.Fatalf("fired = %d, want 0 before deadline", fired)
	}
	q.Expire(500)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 at deadline", fired)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	var q Queue
	var fired int
	a := q.Init("a", func(int64) { fired++ })
	q.Cancel(a) // never set, must be a no-op
	q.Set(a, 100)
	q.Cancel(a)
	q.Cancel(a) // already cancelled
	q.Expire(1000)
	if fired != 0 {
		t.Fatalf("fired = %d, want 0 after cancel", fired)
	}
}

func TestSetReplacesPendingDeadline(t *testing.T) {
	var q Queue
	var fired int
	a := q.Init("a", func(int64) { fired++ })
	q.Set(a, 1000)
	q.Set(a, 100) // reschedule earlier
	q.Expire(500)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 after rescheduled deadline passed", fired)
	}
}

func TestNextDeadline(t *testing.T) {
	var q Queue
	if _, ok := q.NextDeadline(); ok {
		t.Fatal("NextDeadline on empty queue should report ok=false")
	}
	a := q.Init("a", func(int64) {})
	q.Set(a, 777)
	d, ok := q.NextDeadline()
	if !ok || d != 777 {
		t.Fatalf("NextDeadline() = (%d, %v), want (777, true)", d, ok)
	}
}
