package topparse

import (
	"math"
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		inList bool
		want   LineKind
		after  bool
	}{
		{"android cpu", "800%cpu  17%user   0%nice", false, LineCPUSummary, false},
		{"busybox cpu", "CPU:  3% usr  1% sys", false, LineCPUSummary, false},
		{"mem", "Mem:    11540M total", false, LineMemorySummary, false},
		{"kib mem", "KiB Mem : 16318480 total", false, LineMemorySummary, false},
		{"tasks", "  Tasks: 1 total", false, LineTaskSummary, false},
		{"tasks lower case", "tasks: 1 total", false, LineTaskSummary, false},
		{"header", "  PID USER     PR  NI VIRT", false, LineColumnHeader, true},
		{"header keeps list mode", "PID   USER", true, LineColumnHeader, true},
		{"row before header", "1 root 20 0 1G 2M 1M S 1 1 0:00 init", false, LineIgnorable, false},
		{"row after header", "1 root 20 0 1G 2M 1M S 1 1 0:00 init", true, LineProcessRow, true},
		{"blank in list", "   ", true, LineIgnorable, true},
		{"cpu wins over row", "9 root 20 0 1G 2M 1M S 1 1 0:00 echo CPU:", true, LineCPUSummary, true},
		{"uppercase %CPU is not summary", "S[%CPU] %MEM", false, LineIgnorable, false},
		{"user before pid is not header", "USER PID", false, LineIgnorable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, after := ClassifyLine(tt.line, tt.inList)
			if got != tt.want {
				t.Errorf("kind: got %s, want %s", got, tt.want)
			}
			if after != tt.after {
				t.Errorf("inProcessList: got %v, want %v", after, tt.after)
			}
		})
	}
}

func TestLineKindString(t *testing.T) {
	tests := []struct {
		kind LineKind
		want string
	}{
		{LineIgnorable, "Ignorable"},
		{LineCPUSummary, "CPU"},
		{LineMemorySummary, "Memory"},
		{LineTaskSummary, "Tasks"},
		{LineColumnHeader, "Header"},
		{LineProcessRow, "Process"},
		{LineKind(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("LineKind(%d): got %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseTaskStrict(t *testing.T) {
	tests := []struct {
		line           string
		total, running int
		ok             bool
	}{
		{"Tasks: 672 total,   1 running, 671 sleeping", 672, 1, true},
		{"tasks:12 total,3 running", 12, 3, true},
		{"  Tasks:   5   total,   0   running", 5, 0, true},
		{"Tasks: 672 total, 671 sleeping, 1 running", 0, 0, false},
		{"Tasks: 100 insgesamt, 2 laufend", 0, 0, false},
	}

	for _, tt := range tests {
		total, running, ok := parseTaskStrict(tt.line)
		if ok != tt.ok || total != tt.total || running != tt.running {
			t.Errorf("parseTaskStrict(%q) = %d, %d, %v; want %d, %d, %v",
				tt.line, total, running, ok, tt.total, tt.running, tt.ok)
		}
	}
}

func TestParseTaskFallback(t *testing.T) {
	tests := []struct {
		line           string
		total, running int
	}{
		{"Tasks: 672 total, 671 sleeping, 1 running", 672, 1},
		{"Tasks: 100 insgesamt, 2 laufend", 100, 0},
		{"Tasks: total", 0, 0},
		{"Tasks: 9 total, 3 RUNNING (ish)", 9, 3},
		{"Tasks:", 0, 0},
	}

	for _, tt := range tests {
		total, running := parseTaskFallback(tt.line)
		if total != tt.total || running != tt.running {
			t.Errorf("parseTaskFallback(%q) = %d, %d; want %d, %d",
				tt.line, total, running, tt.total, tt.running)
		}
	}
}

func TestParseTaskLine(t *testing.T) {
	total, running := ParseTaskLine("Tasks: 672 total,   1 running, 671 sleeping,   0 stopped,   0 zombie")
	if total != 672 || running != 1 {
		t.Errorf("got %d/%d, want 672/1", total, running)
	}

	// strict form fails here; the fallback still finds both figures
	total, running = ParseTaskLine("Tasks: 40 total, 39 sleeping, 1 running")
	if total != 40 || running != 1 {
		t.Errorf("fallback: got %d/%d, want 40/1", total, running)
	}
}

func TestSummaryLastMatchWins(t *testing.T) {
	input := "Mem: first\nMem: second\nTasks: 1 total, 1 running\nTasks: 2 total, 0 running\n"
	summary, _ := Parse(input)
	if summary.MemoryUsageLine != "Mem: second" {
		t.Errorf("MemoryUsageLine: got %q", summary.MemoryUsageLine)
	}
	if summary.TotalProcessCount != 2 || summary.RunningProcessCount != 0 {
		t.Errorf("counts: got %d/%d, want 2/0", summary.TotalProcessCount, summary.RunningProcessCount)
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		want ProcessRecord
	}{
		{
			name: "android row",
			line: "9207 u0_a189      20   0  18G 218M 138M S  2.7   1.8   3:32.73 com.google.android.gms.persistent",
			ok:   true,
			want: ProcessRecord{
				PID: 9207, Owner: "u0_a189", Priority: 20, NiceValue: 0,
				VirtualMemory: "18G", ResidentMemory: "218M", SharedMemory: "138M",
				State: "S", CPUPercent: 2.7, MemPercent: 1.8, ElapsedTime: "3:32.73",
				Command: "com.google.android.gms.persistent",
			},
		},
		{
			name: "command spaces collapse",
			line: "  42 root  RT  -20 1G 2M 1M D 5%  0.5%  0:00.01 /system/bin/sh   -c    echo  hi",
			ok:   true,
			want: ProcessRecord{
				PID: 42, Owner: "root", Priority: 0, NiceValue: -20,
				VirtualMemory: "1G", ResidentMemory: "2M", SharedMemory: "1M",
				State: "D", CPUPercent: 5, MemPercent: 0.5, ElapsedTime: "0:00.01",
				Command: "/system/bin/sh -c echo hi",
			},
		},
		{
			name: "bad numbers default",
			line: "7 shell x y 1G 2M 1M R n/a ?? 0:00.00 top",
			ok:   true,
			want: ProcessRecord{
				PID: 7, Owner: "shell", VirtualMemory: "1G", ResidentMemory: "2M",
				SharedMemory: "1M", State: "R", ElapsedTime: "0:00.00", Command: "top",
			},
		},
		{name: "ten tokens", line: "1 2 3 4 5 6 7 8 9 10", ok: false},
		{name: "eleven tokens", line: "1 root 20 0 1G 2M 1M S 1 1 0:00", ok: false},
		{name: "non numeric pid", line: "abc root 20 0 1G 2M 1M S 1 1 0:00 x", ok: false},
		{name: "negative pid", line: "-1 root 20 0 1G 2M 1M S 1 1 0:00 x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRow(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(got.CPUPercent-tt.want.CPUPercent) > 1e-9 || math.Abs(got.MemPercent-tt.want.MemPercent) > 1e-9 {
				t.Errorf("percentages: got %.2f/%.2f, want %.2f/%.2f",
					got.CPUPercent, got.MemPercent, tt.want.CPUPercent, tt.want.MemPercent)
			}
			got.CPUPercent, got.MemPercent = tt.want.CPUPercent, tt.want.MemPercent
			if got != tt.want {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestPercentOr(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"44.4", 44.4},
		{"44.4%", 44.4},
		{"%", 0},
		{"NaN", 0},
		{"inf", 0},
		{"-Inf", 0},
		{"1e400", 0},
		{"1e10", 1e10},
		{"99999999999999999999", 1e20},
		{"", 0},
	}
	for _, tt := range tests {
		if got := percentOr(tt.in, 0); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentOr(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
