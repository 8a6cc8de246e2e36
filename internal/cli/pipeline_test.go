package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /hello:\n" +
	"    get:\n" +
	"      operationId: sayHello\n" +
	"      summary: Hello\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                type: string\n"

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	specPath := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(specPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	t.Parallel()
	specPath := writeSpec(t, minimalSpecYAML)
	dest := filepath.Join(t.TempDir(), "api.ts")

	out, err := runRoot(t, "generate", specPath, dest, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Planned write to") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	for _, want := range []string{"METHOD NAME", "sayHello", "/hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(dest); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_DryRunWithoutDestination(t *testing.T) {
	t.Parallel()
	specPath := writeSpec(t, minimalSpecYAML)

	out, err := runRoot(t, "generate", specPath, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "(no destination)") {
		t.Fatalf("unexpected plan output: %s", out)
	}
}

func TestGeneratePipeline_WritesModule(t *testing.T) {
	t.Parallel()
	specPath := writeSpec(t, minimalSpecYAML)
	dest := filepath.Join(t.TempDir(), "nested", "api.ts")

	out, err := runRoot(t, "generate", specPath, dest, "--client-name", "HelloAgent")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Wrote ") || !strings.Contains(out, "(1 operations)") {
		t.Fatalf("unexpected output: %s", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		"This file is auto-generated",
		"export default class HelloAgent {",
		"async sayHello() {",
		`return await this.httpClient.get("/hello", {})`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("generated module missing %q:\n%s", want, s)
		}
	}
}

func TestGeneratePipeline_CompileErrorWritesNothing(t *testing.T) {
	t.Parallel()
	specPath := writeSpec(t, strings.Replace(minimalSpecYAML, "operationId: sayHello", "operationId: delete", 1))
	dest := filepath.Join(t.TempDir(), "api.ts")

	_, err := runRoot(t, "generate", specPath, dest)
	if err == nil {
		t.Fatalf("expected compile error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if _, serr := os.Stat(dest); serr == nil {
		t.Fatalf("expected no output on compile error")
	}
}

func TestGeneratePipeline_MissingSource(t *testing.T) {
	t.Parallel()
	_, err := runRoot(t, "generate", filepath.Join(t.TempDir(), "missing.yaml"), "out.ts")
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
}

const enumsSource = `export enum Color { Red = "red", Green = "green" }
export const Size = { S: 1, M: 2 } as const;
`

func writeEnums(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "enums.ts"), []byte(enumsSource), 0o600); err != nil {
		t.Fatalf("write enums: %v", err)
	}
	return dir
}

func TestConvertEnumsPipeline_WritesYAML(t *testing.T) {
	t.Parallel()
	src := writeEnums(t)
	dest := filepath.Join(t.TempDir(), "enums.yaml")

	out, err := runRoot(t, "convert-enums", src, dest)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Wrote 2 enums") {
		t.Fatalf("unexpected output: %s", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	s := string(data)
	for _, want := range []string{"components:", "Color:", `- "red"`, "Size:", "- 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("enums output missing %q:\n%s", want, s)
		}
	}
}

func TestConvertEnumsPipeline_JSONIntoDirectory(t *testing.T) {
	t.Parallel()
	src := writeEnums(t)
	dest := filepath.Join(t.TempDir(), "enums.json")

	if _, err := runRoot(t, "convert-enums", src, dest); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") || !strings.Contains(string(data), `"Color"`) {
		t.Fatalf("expected JSON output, got:\n%s", data)
	}

	dir := t.TempDir()
	if _, err := runRoot(t, "convert-enums", src, dir); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultEnumsFile)); err != nil {
		t.Fatalf("expected %s inside destination directory: %v", defaultEnumsFile, err)
	}
}

func TestConvertEnumsPipeline_DryRunFromConfig(t *testing.T) {
	t.Parallel()
	src := writeEnums(t)
	configPath := filepath.Join(t.TempDir(), "opents.yaml")
	config := "enumsInput: " + src + "\ndryRun: true\n"
	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runRoot(t, "--config", configPath, "convert-enums")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Found 2 enums", "NAME", "Color", "Size", "enums.ts"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

func TestConvertEnumsPipeline_MissingDirectory(t *testing.T) {
	t.Parallel()
	_, err := runRoot(t, "convert-enums", filepath.Join(t.TempDir(), "nope"), "out.yaml")
	if err == nil {
		t.Fatalf("expected error for missing source directory")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}
