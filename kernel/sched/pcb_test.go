package sched

import "testing"

func TestPCBNameRoundTrips(t *testing.T) {
	p := &PCB{}
	p.setName("init")

	if got := p.Name(); got != "init" {
		t.Errorf("Name() = %q, want %q", got, "init")
	}
}

func TestPCBNameTruncatesLongNames(t *testing.T) {
	p := &PCB{}
	long := "this-name-is-far-too-long-to-fit-in-the-fixed-buffer"
	p.setName(long)

	got := p.Name()
	if len(got) != maxNameLen {
		t.Fatalf("Name() length = %d, want %d", len(got), maxNameLen)
	}
	if got != long[:maxNameLen] {
		t.Errorf("Name() = %q, want prefix %q", got, long[:maxNameLen])
	}
}
