package marker

import "testing"

func TestPythonVersions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"no marker", ``, "*"},
		{"no python clause", `sys_platform == "win32"`, "*"},
		{"extra clause only", `extra == "tls"`, "*"},
		{"lower bound", `python_version >= "3.6"`, ">=3.6"},
		{"upper bound", `python_version < "4.0"`, "<4.0"},
		{"bounded range", `python_version >= "3.6" and python_version < "4.0"`, ">=3.6,<4.0"},
		{"equality is a minor series", `python_version == "3.6"`, ">=3.6,<3.7"},
		{"full version equality is exact", `python_full_version == "3.6.1"`, "3.6.1"},
		{"inequality splits", `python_version != "3.6"`, "<3.6 || >=3.7"},
		{"le covers the series", `python_version <= "3.6"`, "<3.7"},
		{"gt excludes the series", `python_version > "3.6"`, ">=3.7"},
		{"compatible release", `python_version ~= "3.6"`, ">=3.6,<4"},
		{"full compatible release", `python_full_version ~= "3.6.1"`, ">=3.6.1,<3.7"},
		{"union of branches", `python_version >= "3.8" or python_version == "3.6"`, ">=3.6,<3.7 || >=3.8"},
		{"touching branches merge", `python_version == "3.6" or python_version == "3.7"`, ">=3.6,<3.8"},
		{"platform branch widens to any", `python_version >= "3.6" or sys_platform == "win32"`, "*"},
		{"platform clause in conjunction ignored", `python_version >= "3.6" and sys_platform == "win32"`, ">=3.6"},
		{"contradiction is empty", `python_version < "3.0" and python_version >= "3.6"`, "<empty>"},
		{"whole marker counts, not the platform projection", `(python_version >= "3.6" and sys_platform == "linux") or python_version >= "3.8"`, ">=3.6"},
		{"major only bound", `python_version < "3"`, "<3"},
		{"malformed literal is unconstrained", `python_version >= "banana"`, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.expr, err)
			}
			if got := PythonVersions(e); got != tt.want {
				t.Errorf("PythonVersions(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestPythonVersions_Deterministic(t *testing.T) {
	e, err := Parse(`python_version == "3.7" or python_version == "3.6" or python_version >= "3.9"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := ">=3.6,<3.8 || >=3.9"
	for i := 0; i < 10; i++ {
		if got := PythonVersions(e); got != want {
			t.Fatalf("run %d: PythonVersions = %q, want %q", i, got, want)
		}
	}
}
