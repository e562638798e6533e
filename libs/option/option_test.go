package option

import (
	"bytes"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type askCommand struct {
	Prompt string `long:"prompt" required:"true"`
	ran    bool
}

func (c *askCommand) Execute(args []string) error {
	c.ran = true
	return nil
}

func TestParseArgs_RunsCommand(t *testing.T) {
	t.Setenv("runConfig", "")
	opts := NewOptions()
	ask := &askCommand{}
	require.NoError(t, opts.AddCommand("ask", "Ask once", "", ask))

	require.NoError(t, opts.ParseArgs([]string{"--config", "helpdesk.toml", "--log.level", "debug", "--http.port", "9090", "ask", "--prompt", "hi"}))
	assert.True(t, ask.ran)
	assert.Equal(t, "hi", ask.Prompt)
	assert.Equal(t, "helpdesk.toml", opts.ConfigFile)
	assert.Equal(t, 9090, opts.Http.Port)
	level, ok := opts.Log.ZapLevel()
	assert.True(t, ok)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestParseArgs_ConfigFromEnv(t *testing.T) {
	t.Setenv("runConfig", "/etc/helpdesk.toml")
	opts := NewOptions()
	require.NoError(t, opts.ParseArgs(nil))
	assert.Equal(t, "/etc/helpdesk.toml", opts.ConfigFile)
	_, ok := opts.Log.ZapLevel()
	assert.False(t, ok)
}

func TestParseArgs_Errors(t *testing.T) {
	var out bytes.Buffer
	opts := NewOptions()
	opts.SetOutput(&out)
	require.NoError(t, opts.AddCommand("ask", "Ask once", "", &askCommand{}))

	err := opts.ParseArgs([]string{"ask"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Fault:")

	out.Reset()
	err = opts.ParseArgs([]string{"--help"})
	var flagErr *flags.Error
	require.ErrorAs(t, err, &flagErr)
	assert.Equal(t, flags.ErrHelp, flagErr.Type)
	assert.Contains(t, out.String(), "--config")
}
