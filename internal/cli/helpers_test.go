package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/topten/internal/config"
)

// clearEnv blanks every variable config.Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvDatabase, config.EnvAddr, config.EnvLogLevel, config.EnvToken, config.EnvBaseURL} {
		t.Setenv(k, "")
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

const testSeed = `movies:
  - title: Up
    year: 2009
    description: An old man flies his house to South America.
    rating: 7
    img_url: https://image.tmdb.org/t/p/w500/up.jpg
  - title: Heat
    year: 1995
    description: A crew of thieves.
    rating: 8.3
    review: Great
    img_url: https://image.tmdb.org/t/p/w500/heat.jpg
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
