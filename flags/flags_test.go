package flags

import (
	"testing"
	"time"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestOptionalFlagsDontSetRequired asserts that all flags deemed optional set
// the Required field to false.
func TestOptionalFlagsDontSetRequired(t *testing.T) {
	for _, flag := range optionalFlags {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired())
	}
}

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
			require.Equal(t, opservice.FlagNameToEnvVarName(flagName, EnvVarPrefix), envFlags[0])
		})
	}
}

func TestTestersFlagModes(t *testing.T) {
	testCases := []struct {
		name      string
		args      []string
		wantSet   bool
		wantValue string
	}{
		{"absent", []string{"app"}, false, ""},
		{"empty value", []string{"app", "--testers="}, true, ""},
		{"digits", []string{"app", "--testers", "12"}, true, "12"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := &cli.App{
				Flags: []cli.Flag{Testers},
				Action: func(ctx *cli.Context) error {
					assert.Equal(t, tc.wantSet, ctx.IsSet(Testers.Name))
					assert.Equal(t, tc.wantValue, ctx.String(Testers.Name))
					return nil
				},
			}
			require.NoError(t, app.Run(tc.args))
		})
	}
}

func TestDefaults(t *testing.T) {
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			assert.Equal(t, 10*time.Second, ctx.Duration(Timeout.Name))
			assert.Equal(t, "gcc", ctx.String(CC.Name))
			assert.Equal(t, "make", ctx.String(Make.Name))
			assert.Equal(t, "norminette", ctx.String(Norminette.Name))
			assert.Equal(t, ".", ctx.String(SourceDir.Name))
			assert.False(t, ctx.Bool(Strict.Name))
			assert.False(t, ctx.Bool(Bonus.Name))
			assert.Equal(t, []string{"strlen", "atoi"}, ctx.Args().Slice())
			return CheckRequired(ctx)
		},
	}
	require.NoError(t, app.Run([]string{"app", "strlen", "atoi"}))
}
