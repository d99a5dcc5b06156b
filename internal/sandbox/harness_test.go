package sandbox

import (
	"strings"
	"testing"
)

func TestBuildHarness(t *testing.T) {
	code := "def fibonacci(n):\n    return n"
	tests := []string{"assert fibonacci(0) == 0", `assert "quoted" != ''`}

	harness, err := buildHarness(code, tests)
	if err != nil {
		t.Fatalf("buildHarness failed: %v", err)
	}

	if !strings.HasPrefix(harness, code) {
		t.Error("harness must start with the snippet under test")
	}
	if !strings.Contains(harness, testMarker) {
		t.Error("harness must print test markers")
	}
	// Assertions travel base64-encoded, so quoting cannot break out of
	// the generated program.
	if strings.Contains(harness, "quoted") {
		t.Error("raw test text leaked into the harness")
	}
}

func TestCountPasses(t *testing.T) {
	tests := []struct {
		name   string
		output string
		total  int
		want   int
	}{
		{
			name: "all pass",
			output: testMarker + " 0 PASS\n" +
				testMarker + " 1 PASS\n",
			total: 2,
			want:  2,
		},
		{
			name: "mixed",
			output: testMarker + " 0 PASS\n" +
				testMarker + " 1 FAIL: assertion\n" +
				testMarker + " 2 PASS\n",
			total: 3,
			want:  2,
		},
		{
			name:   "program output does not fake a marker",
			output: "PASS\nsomething " + testMarker + "\n",
			total:  1,
			want:   0,
		},
		{
			name: "duplicate markers count once",
			output: testMarker + " 0 PASS\n" +
				testMarker + " 0 PASS\n" +
				testMarker + " 0 PASS\n",
			total: 1,
			want:  1,
		},
		{
			name: "out-of-range index ignored",
			output: testMarker + " 0 PASS\n" +
				testMarker + " 7 PASS\n" +
				testMarker + " -1 PASS\n",
			total: 2,
			want:  1,
		},
		{
			name: "snippet-printed verdict overridden by the harness",
			output: testMarker + " 0 PASS\n" +
				testMarker + " 0 FAIL: assertion\n",
			total: 1,
			want:  0,
		},
		{
			name:   "truncated run",
			output: testMarker + " 0 PASS\npartial lin",
			total:  2,
			want:   1,
		},
		{
			name:   "empty",
			output: "",
			total:  3,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countPasses(tt.output, tt.total); got != tt.want {
				t.Errorf("countPasses() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreStaysInUnitIntervalForSpoofedOutput(t *testing.T) {
	// A snippet that prints its own PASS lines must not push the score
	// past 1: the tally is bounded by the test count.
	output := ""
	for i := 0; i < 10; i++ {
		output += testMarker + " 0 PASS\n"
	}
	res := Result{Passed: countPasses(output, 1), Total: 1}
	if s := res.Score(); s < 0 || s > 1 {
		t.Errorf("Score() = %f, want within [0,1]", s)
	}
	if res.Passed > res.Total {
		t.Errorf("Passed = %d exceeds Total = %d", res.Passed, res.Total)
	}
}

func TestResultScore(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want float64
	}{
		{"all passed", Result{Passed: 4, Total: 4}, 1.0},
		{"partial", Result{Passed: 1, Total: 4}, 0.25},
		{"timeout counts rest failed", Result{Passed: 1, Total: 3, TimedOut: true}, 1.0 / 3.0},
		{"no tests", Result{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Score(); got != tt.want {
				t.Errorf("Score() = %f, want %f", got, tt.want)
			}
		})
	}
}
