package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "scenekit", cmd.Use)
	assert.Contains(t, cmd.Long, "manifests")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "compile", "routes", "render", "navigate", "replay", "instantiate", "test", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "warn", levelFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"output", "db"}},
		{"navigate", []string{"db", "session"}},
		{"replay", []string{"db", "session"}},
		{"instantiate", []string{"variant", "id", "parent", "param", "db"}},
		{"test", []string{"update", "filter"}},
		{"serve", []string{"addr", "db", "session"}},
	}

	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}

	compileCmd, _, err := root.Find([]string{"compile"})
	require.NoError(t, err)
	assert.Equal(t, "o", compileCmd.Flags().Lookup("output").Shorthand)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(NewRootCommand(), "--format", "invalid", "routes", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLogLevelValidation(t *testing.T) {
	_, err := execute(NewRootCommand(), "--log-level", "loud", "routes", siteManifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	out, err := execute(NewRootCommand(), "--log-level", "debug", "routes", siteManifest)
	require.NoError(t, err)
	assert.Contains(t, out, "/posts/:slug")
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv(LogLevelEnv, "loud")
	_, err := execute(NewRootCommand(), "routes", siteManifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	// The flag wins over the environment.
	_, err = execute(NewRootCommand(), "--log-level", "error", "routes", siteManifest)
	require.NoError(t, err)
}
