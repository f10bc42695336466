// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazelrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDirectives(t *testing.T) {
	t.Parallel()

	content := `# tool defaults
common --enable_platform_specific_config

build --verbose_failures
build:ci --remote_timeout=3600 # inline comment
test:ci --test_output=errors

startup --host_jvm_args="-Xmx4g -Xms1g"
run --script_path='out dir/run.sh'
`
	file, err := Parse("/workspace/.bazelrc", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		command string
		config  string
		args    []string
		number  int
	}{
		{"common", "", []string{"--enable_platform_specific_config"}, 2},
		{"build", "", []string{"--verbose_failures"}, 4},
		{"build", "ci", []string{"--remote_timeout=3600"}, 5},
		{"test", "ci", []string{"--test_output=errors"}, 6},
		{"startup", "", []string{"--host_jvm_args=-Xmx4g -Xms1g"}, 8},
		{"run", "", []string{"--script_path=out dir/run.sh"}, 9},
	}
	if len(file.Lines) != len(tests) {
		t.Fatalf("parsed %d lines, want %d: %+v", len(file.Lines), len(tests), file.Lines)
	}
	for i, want := range tests {
		got := file.Lines[i]
		if got.Command != want.command || got.Config != want.config {
			t.Errorf("line %d: command %q config %q, want %q %q", i, got.Command, got.Config, want.command, want.config)
		}
		if strings.Join(got.Args, "\x00") != strings.Join(want.args, "\x00") {
			t.Errorf("line %d: args %q, want %q", i, got.Args, want.args)
		}
		if got.Number != want.number {
			t.Errorf("line %d: number %d, want %d", i, got.Number, want.number)
		}
		if got.Source != "/workspace/.bazelrc" {
			t.Errorf("line %d: source %q", i, got.Source)
		}
	}
}

func TestParseContinuation(t *testing.T) {
	t.Parallel()

	content := "build --deleted_packages=a,b \\\n    --verbose_failures\n"
	file, err := Parse(".bazelrc", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.Lines) != 1 {
		t.Fatalf("parsed %d lines, want 1", len(file.Lines))
	}
	line := file.Lines[0]
	if len(line.Args) != 2 || line.Args[0] != "--deleted_packages=a,b" || line.Args[1] != "--verbose_failures" {
		t.Errorf("args = %q", line.Args)
	}
	if line.Number != 1 {
		t.Errorf("number = %d, want 1", line.Number)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"empty-config", "build: --foo\n"},
		{"missing-command", ":ci --foo\n"},
		{"unterminated-quote", "build --flag='oops\n"},
		{"import-with-config", "import:ci somefile\n"},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(".bazelrc", []byte(testCase.content)); err == nil {
				t.Errorf("Parse accepted %q", testCase.content)
			}
		})
	}
}

func TestTokenizeQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", `build --verbose_failures`, []string{"build", "--verbose_failures"}},
		{"double-quoted", `a "b c" d`, []string{"a", "b c", "d"}},
		{"embedded-quotes", `--flag="x y"`, []string{"--flag=x y"}},
		{"single-quoted-hash", `a '#not-a-comment'`, []string{"a", "#not-a-comment"}},
		{"escaped-space", `a b\ c`, []string{"a", "b c"}},
		{"escape-in-double", `"a\"b"`, []string{`a"b`}},
		{"comment", `a b # rest ignored`, []string{"a", "b"}},
		{"only-comment", `# nothing`, nil},
		{"empty", ``, nil},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got, err := tokenize(testCase.input)
			if err != nil {
				t.Fatalf("tokenize(%q): %v", testCase.input, err)
			}
			if len(got) != len(testCase.want) {
				t.Fatalf("tokenize(%q) = %q, want %q", testCase.input, got, testCase.want)
			}
			for i := range got {
				if got[i] != testCase.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", testCase.input, i, got[i], testCase.want[i])
				}
			}
		})
	}
}

func TestLoadImports(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".bazelrc"), `
common --verbose_failures
import %workspace%/tools/shared.bazelrc
try-import %workspace%/user.bazelrc
build --test_output=errors
`)
	writeFile(t, filepath.Join(root, "tools", "shared.bazelrc"), `
build:ci --remote_timeout=3600
`)

	file, err := Load(filepath.Join(root, ".bazelrc"), root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var summary []string
	for _, line := range file.Lines {
		name := line.Command
		if line.Config != "" {
			name += ":" + line.Config
		}
		summary = append(summary, name)
	}
	want := []string{"common", "build:ci", "build"}
	if strings.Join(summary, " ") != strings.Join(want, " ") {
		t.Errorf("line order = %v, want %v", summary, want)
	}

	// The imported line reports its own source file.
	if got := file.Lines[1].Source; !strings.HasSuffix(got, "shared.bazelrc") {
		t.Errorf("imported line source = %q", got)
	}
}

func TestLoadMissingImport(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".bazelrc"), "import %workspace%/absent.bazelrc\n")

	if _, err := Load(filepath.Join(root, ".bazelrc"), root); err == nil {
		t.Error("Load succeeded with missing import")
	}
}

func TestLoadImportCycle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bazelrc"), "import %workspace%/b.bazelrc\n")
	writeFile(t, filepath.Join(root, "b.bazelrc"), "import %workspace%/a.bazelrc\n")

	_, err := Load(filepath.Join(root, "a.bazelrc"), root)
	if err == nil {
		t.Fatal("Load succeeded on an import cycle")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v, want mention of cycle", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
