package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alevsk/shapeshift/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd calls a command's RunE with stdin and captures stdout
func runCmd(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetIn(nil)
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetConfig(t *testing.T) {
	t.Helper()
	cfg = config.Default()
	t.Cleanup(func() { cfg = config.Default() })
}

// execute runs a full command line through run and captures both streams
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	resetConfig(t)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		*transformOpts = transformFlags{}
		for _, c := range []*cobra.Command{rootCmd, transformCmd} {
			for _, name := range []string{"help", "data", "from", "to", "pretty", "indent", "strict", "output"} {
				if f := c.Flags().Lookup(name); f != nil {
					f.Changed = false
				}
			}
		}
		if f := rootCmd.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
		}
	})
	code := run(args, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		partial    bool
		wantUsage  bool
		wantErr    string
	}{
		{
			name:       "help",
			args:       []string{"--help"},
			wantStdout: "Usage:",
			partial:    true,
		},
		{
			name:       "valid transform",
			args:       []string{"transform", "-d", `{"a": 1}`, "--from", "json", "--to", "yaml", "-o", "raw", "--pretty", "--indent", "2"},
			wantStdout: "a: 1\n",
		},
		{
			name:       "invalid result keeps stdout to the document",
			args:       []string{"transform", "-d", `{"api_key": "sk-1234567890abcdef"}`, "--from", "json", "--to", "yaml", "--strict", "-o", "raw", "--pretty", "--indent", "2"},
			wantCode:   1,
			wantStdout: "api_key: sk-1234567890abcdef\n",
			wantErr:    "Error: transform failed: potential secret at api_key",
		},
		{
			name:      "usage error prints usage to stderr",
			args:      []string{"transform", "unexpected"},
			wantCode:  1,
			wantUsage: true,
			wantErr:   "Error: unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := execute(t, tt.args...)
			assert.Equal(t, tt.wantCode, code, stderr)
			if tt.partial {
				assert.Contains(t, stdout, tt.wantStdout)
			} else {
				assert.Equal(t, tt.wantStdout, stdout)
			}
			assert.Equal(t, tt.wantUsage, strings.Contains(stderr, "Usage:"), stderr)
			if tt.wantErr != "" {
				assert.Contains(t, stderr, tt.wantErr)
			}
		})
	}
}

func TestRootPersistentPreRun(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\ntransform:\n  target: yaml\n"), 0644))

	configPath = path
	debug = true
	t.Cleanup(func() {
		configPath = ""
		debug = false
	})

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "yaml", cfg.Transform.Target)

	configPath = filepath.Join(dir, "missing.yml")
	assert.Error(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}

func TestTransformCmd(t *testing.T) {
	resetConfig(t)

	tests := []struct {
		name    string
		flags   transformFlags
		stdin   string
		want    string
		wantErr bool
	}{
		{
			name:  "inline json to yaml",
			flags: transformFlags{input: inputFlags{data: `{"a": 1}`}, to: "yaml", pretty: true, indent: 2, output: "raw"},
			want:  "a: 1\n",
		},
		{
			name:  "stdin with detection",
			flags: transformFlags{to: "json", output: "raw"},
			stdin: "a: [1, 2]\n",
			want:  `{"a":[1,2]}` + "\n",
		},
		{
			name:    "invalid document",
			flags:   transformFlags{input: inputFlags{data: `{"a": null}`}, from: "json", to: "toml", output: "raw"},
			want:    "\n",
			wantErr: true,
		},
		{
			name:    "unknown output",
			flags:   transformFlags{input: inputFlags{data: `{"a": 1}`}, to: "json", output: "html"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := tt.flags
			*transformOpts = flags
			out, err := runCmd(t, transformCmd, tt.stdin)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.want != "" {
				assert.Equal(t, tt.want, out)
			}
		})
	}
}

func TestTransformCmdStrict(t *testing.T) {
	resetConfig(t)
	*transformOpts = transformFlags{
		input:  inputFlags{data: `{"password": "correct-horse-battery"}`},
		from:   "json",
		to:     "yaml",
		output: "json",
	}

	require.NoError(t, transformCmd.Flags().Set("strict", "true"))
	t.Cleanup(func() {
		transformCmd.Flags().Lookup("strict").Changed = false
	})
	transformOpts.strict = true

	out, err := runCmd(t, transformCmd, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "potential secret at password")
	assert.Contains(t, out, `"valid": false`)
}

func TestTransformPreRunAppliesConfig(t *testing.T) {
	resetConfig(t)
	cfg.Transform.Target = "toml"
	cfg.Transform.Pretty = false
	cfg.Transform.Validate = false

	*transformOpts = transformFlags{}
	transformCmd.PreRun(transformCmd, nil)
	assert.Equal(t, "toml", transformOpts.to)
	assert.False(t, transformOpts.pretty)
	assert.True(t, transformOpts.noValidate)
}

func TestTransformCmdFile(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "in.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 8080\n"), 0644))

	*transformOpts = transformFlags{input: inputFlags{file: path}, to: "json", output: "raw"}
	out, err := runCmd(t, transformCmd, "")
	require.NoError(t, err)
	assert.Equal(t, `{"server":{"port":8080}}`+"\n", out)

	*transformOpts = transformFlags{input: inputFlags{file: filepath.Join(t.TempDir(), "nope")}, output: "raw"}
	_, err = runCmd(t, transformCmd, "")
	assert.Error(t, err)

	*transformOpts = transformFlags{input: inputFlags{file: path, data: "a: 1"}, output: "raw"}
	_, err = runCmd(t, transformCmd, "")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestValidateCmd(t *testing.T) {
	resetConfig(t)

	*validateOpts = validateFlags{input: inputFlags{data: "title = \"x\"\n"}, output: "yaml"}
	out, err := runCmd(t, validateCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: true")
	assert.Contains(t, out, "format: toml")

	*validateOpts = validateFlags{input: inputFlags{data: `{"info": {}}`}, format: "openapi", output: "table"}
	out, err = runCmd(t, validateCmd, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field 'openapi'")
	assert.Contains(t, out, "MESSAGES")

	*validateOpts = validateFlags{output: "json"}
	_, err = runCmd(t, validateCmd, "")
	assert.Error(t, err)
}

func TestDetectCmd(t *testing.T) {
	resetConfig(t)

	*detectOpts = detectFlags{output: "json"}
	out, err := runCmd(t, detectCmd, `<a>1</a>`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"xml","confidence":"100%","message":"detected format: xml (100% confidence)"}`, out)

	_, err = runCmd(t, detectCmd, "")
	assert.Error(t, err)
}

func TestFormatsCmd(t *testing.T) {
	resetConfig(t)

	formatsOutput = "plain"
	out, err := runCmd(t, formatsCmd, "")
	require.NoError(t, err)
	assert.Equal(t, "json\nyaml\ntoml\nxml\nopenapi\n", out)

	formatsOutput = "json"
	t.Cleanup(func() { formatsOutput = "plain" })
	out, err = runCmd(t, formatsCmd, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"formats":["json","yaml","toml","xml","openapi"]}`, out)
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"plain", "dev (built: unknown commit: none)\n"},
		{"yaml", "version: dev\ncommit: none\ndate: unknown\n"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			versionOutput = tt.output
			t.Cleanup(func() { versionOutput = "plain" })
			out, err := runCmd(t, versionCmd, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompletionCmd(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := runCmd(t, completionCmd, "", shell)
		require.NoError(t, err, shell)
		assert.NotEmpty(t, out, shell)
	}
}

func TestServeCmd(t *testing.T) {
	resetConfig(t)

	require.NoError(t, serveCmd.Flags().Set("host", "127.0.0.1"))
	require.NoError(t, serveCmd.Flags().Set("port", "0"))
	require.NoError(t, serveCmd.Flags().Set("timeout", "5s"))
	require.NoError(t, serveCmd.PreRunE(serveCmd, nil))
	assert.Equal(t, "127.0.0.1:0", cfg.Server.Address())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	serveCmd.SetContext(ctx)
	out, err := runCmd(t, serveCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "127.0.0.1:0")

	require.NoError(t, serveCmd.Flags().Set("timeout", "soon"))
	assert.Error(t, serveCmd.PreRunE(serveCmd, nil))
}

func TestBatchCmd(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"a": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.xml"), []byte(`<b>two</b>`), 0644))
	outDir := filepath.Join(t.TempDir(), "out")

	*batchOpts = batchFlags{to: "yaml", pretty: true, indent: 2, outDir: outDir, output: "json"}
	out, err := runCmd(t, batchCmd, "", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)

	b, err := os.ReadFile(filepath.Join(outDir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(b))
	b, err = os.ReadFile(filepath.Join(outDir, "nested", "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "b: two\n", string(b))
}

func TestBatchCmdFailures(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.json"), []byte(`{"a": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "null.json"), []byte(`{"a": null}`), 0644))

	*batchOpts = batchFlags{to: "toml", output: "table"}
	out, err := runCmd(t, batchCmd, "", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null.json")
	assert.NotContains(t, err.Error(), "ok.json")
	assert.Contains(t, out, "FILES")

	*batchOpts = batchFlags{to: "ini", output: "table"}
	_, err = runCmd(t, batchCmd, "", dir)
	assert.Error(t, err)

	*batchOpts = batchFlags{to: "json", output: "table"}
	_, err = runCmd(t, batchCmd, "", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
