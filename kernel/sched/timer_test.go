package sched

import "testing"

// makeRunning detaches p from the ready queue and installs it as the
// running process, the state a process is in when it calls a suspension
// point like TimerSleep.
func makeRunning(p *PCB) {
	global.ready.remove(p)
	p.State = Running
	global.current = p
}

func TestPitInitProgramsChannelZeroDivisor(t *testing.T) {
	var writes []portWrite
	orig := pitOutbFn
	pitOutbFn = func(port uint16, value uint8) {
		writes = append(writes, portWrite{port, value})
	}
	defer func() { pitOutbFn = orig }()

	pitInit(tickHz)

	divisor := uint16(pitInputClock / tickHz)
	want := []portWrite{
		{pitCommand, pitModeSquare},
		{pitChannel0, uint8(divisor & 0xFF)},
		{pitChannel0, uint8(divisor >> 8)},
	}
	if len(writes) != len(want) {
		t.Fatalf("got %d port writes, want %d", len(writes), len(want))
	}
	for i := range want {
		if writes[i] != want[i] {
			t.Fatalf("write %d = %+v, want %+v", i, writes[i], want[i])
		}
	}
}

type portWrite struct {
	port  uint16
	value uint8
}

func TestTimerTickWakesSleeperExactlyOnDeadline(t *testing.T) {
	resetGlobal()

	p, _ := ProcessCreate("sleeper", 0x1000, Normal)
	makeRunning(p)

	TimerSleep(5)
	if p.State != Sleeping {
		t.Fatalf("State = %v, want Sleeping", p.State)
	}

	for i := 0; i < 4; i++ {
		timerTick()
		if p.State != Sleeping {
			t.Fatalf("woke early at tick %d", global.tick)
		}
	}

	timerTick() // tick 5 == wakeAt
	if p.State != Ready {
		t.Fatalf("State = %v at tick %d, want Ready", p.State, global.tick)
	}
	if !global.sleeping.empty() {
		t.Errorf("expected sleeping queue empty after wake")
	}
	if global.ready.len() != 1 {
		t.Errorf("ready queue len = %d, want 1", global.ready.len())
	}
}

func TestWakeDueSleepersMovesOnlyDueProcesses(t *testing.T) {
	resetGlobal()

	early, _ := ProcessCreate("early", 0x1000, Normal)
	late, _ := ProcessCreate("late", 0x2000, Normal)
	global.ready.remove(early)
	global.ready.remove(late)

	early.State, early.wakeAt = Sleeping, 3
	late.State, late.wakeAt = Sleeping, 100
	global.sleeping.appendFIFO(early)
	global.sleeping.appendFIFO(late)

	global.tick = 3
	wakeDueSleepers()

	if early.State != Ready {
		t.Errorf("early.State = %v, want Ready", early.State)
	}
	if late.State != Sleeping {
		t.Errorf("late.State = %v, want Sleeping", late.State)
	}
	if global.sleeping.len() != 1 {
		t.Errorf("sleeping queue len = %d, want 1", global.sleeping.len())
	}
}

func TestTimerTickAccountsRunTimeForRunningProcess(t *testing.T) {
	resetGlobal()

	p, _ := ProcessCreate("worker", 0x1000, Normal)
	makeRunning(p)

	for i := 0; i < 3; i++ {
		timerTick()
	}

	if p.cumulativeRunTicks != 3 {
		t.Errorf("cumulativeRunTicks = %d, want 3", p.cumulativeRunTicks)
	}
}

func TestPreemptionAlternatesBetweenEqualPriorityProcesses(t *testing.T) {
	resetGlobal()

	a, _ := ProcessCreate("a", 0x1000, Normal)
	b, _ := ProcessCreate("b", 0x2000, Normal)
	makeRunning(a)

	ranB := false
	for i := 0; i < 300; i++ {
		timerTick()
		if global.current == b {
			ranB = true
		}
	}

	if !ranB {
		t.Fatalf("process b never got the CPU within 300 ticks")
	}
	if a.cumulativeRunTicks == 0 || b.cumulativeRunTicks == 0 {
		t.Errorf("expected both processes to accumulate run time; a=%d b=%d",
			a.cumulativeRunTicks, b.cumulativeRunTicks)
	}
}
