package viewcam

import "testing"

func TestDefaultLoggerDebugToggle(t *testing.T) {
	l := NewDefaultLogger("test", false)
	if l.DebugEnabled() {
		t.Fatal("expected debug disabled by default")
	}
	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Fatal("expected debug enabled after SetDebug(true)")
	}
	// Should not panic regardless of debug state.
	l.Debugf("value=%d", 1)
	l.Infof("hello %s", "world")
	l.Warnf("careful")
	l.Errorf("boom")
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	l := NewNopLogger()
	if l.DebugEnabled() {
		t.Fatal("expected nop logger debug to report false")
	}
	l.SetDebug(true)
	if l.DebugEnabled() {
		t.Fatal("expected nop logger to ignore SetDebug")
	}
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}
