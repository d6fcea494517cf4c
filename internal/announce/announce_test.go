package announce

import "testing"

func TestNoOpAnnouncer_NeverErrors(t *testing.T) {
	a := New()
	if err := a.Notify("title", "body"); err != nil {
		t.Fatalf("Notify returned %v, want nil", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close returned %v, want nil", err)
	}
}

func TestNoOpAnnouncer_ImplementsAnnouncer(t *testing.T) {
	var _ Announcer = NoOpAnnouncer{}
}
