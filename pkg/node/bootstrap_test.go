//go:build unit

package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/testenv-vm/internal/util/fakes/directoryfake"
	"github.com/alexandremahdhaoui/testenv-vm/internal/util/fakes/runnerfake"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/probe"
)

func bootstrapTestConfig(t *testing.T, dir *directoryfake.Fake) Config {
	t.Helper()

	cfg := testConfig(dir)
	cfg.SSHPassword = "defaultpw"
	cfg.Mapper = mapperFunc(func(context.Context, string) (string, error) {
		return testIP, nil
	})

	return cfg
}

func TestBootstrapCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("full option set", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))

		c, err := Attach(ctx, testNodeName, 4217, bootstrapTestConfig(t, dir))
		require.NoError(t, err)

		argv, err := c.BootstrapCommand(ctx, BootstrapOptions{
			SSHUser:        "deploy",
			SSHPassword:    "s3cret",
			ConfigPath:     "/etc/chef/knife.rb",
			RunList:        "recipe[base],role[web]",
			AttributesJSON: `{"cluster":"lab"}`,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"knife", "bootstrap", testIP,
			"-x", "deploy",
			"-P", "s3cret",
			"-N", "ephemeral_4217",
			"--config", "/etc/chef/knife.rb",
			"-r", "recipe[base],role[web]",
			"-j", `{"cluster":"lab"}`,
		}, argv)
	})

	t.Run("defaults substitute only the credentials", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))

		c, err := Attach(ctx, testNodeName, 4217, bootstrapTestConfig(t, dir))
		require.NoError(t, err)

		argv, err := c.BootstrapCommand(ctx, BootstrapOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"knife", "bootstrap", testIP,
			"-x", DefaultSSHUser,
			"-P", "defaultpw",
			"-N", "ephemeral_4217",
		}, argv)
		assert.NotContains(t, argv, "--config")
		assert.NotContains(t, argv, "-r")
		assert.NotContains(t, argv, "-j")
	})

	t.Run("each optional fragment appears only when supplied", func(t *testing.T) {
		tests := []struct {
			name     string
			opts     BootstrapOptions
			fragment string
			value    string
		}{
			{name: "config path", opts: BootstrapOptions{ConfigPath: "/tmp/knife.rb"}, fragment: "--config", value: "/tmp/knife.rb"},
			{name: "run list", opts: BootstrapOptions{RunList: "recipe[base]"}, fragment: "-r", value: "recipe[base]"},
			{name: "attributes", opts: BootstrapOptions{AttributesJSON: `{"a":1}`}, fragment: "-j", value: `{"a":1}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dir := directoryfake.New(t).PutVM(runningVM(4217))

				c, err := Attach(ctx, testNodeName, 4217, bootstrapTestConfig(t, dir))
				require.NoError(t, err)

				argv, err := c.BootstrapCommand(ctx, tt.opts)

				require.NoError(t, err)
				assert.Contains(t, argv, tt.fragment)
				assert.Contains(t, argv, tt.value)

				for _, other := range []string{"--config", "-r", "-j"} {
					if other != tt.fragment {
						assert.NotContains(t, argv, other)
					}
				}
			})
		}
	})

	t.Run("no vm handle", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return "", "", nil
			})

		cfg := bootstrapTestConfig(t, dir)
		cfg.Runner = runner

		c, err := Attach(ctx, testNodeName, 4217, cfg)
		require.NoError(t, err)

		_, err = c.Delete(ctx)
		require.NoError(t, err)

		_, err = c.BootstrapCommand(ctx, BootstrapOptions{})
		require.ErrorIs(t, err, ErrNoVM)
	})
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	openAfter := func(closedProbes int) probe.Prober {
		probes := 0

		return proberFunc(func(_ context.Context, host string, port int) probe.Result {
			assert.Equal(t, testIP, host)
			assert.Equal(t, DefaultSSHPort, port)

			probes++
			if probes <= closedProbes {
				return probe.Result{Status: probe.StatusClosed}
			}

			return probe.Result{Status: probe.StatusOpen}
		})
	}

	t.Run("waits for ssh then runs the bootstrap tool", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, name string, args []string) (string, string, error) {
				assert.Equal(t, "knife", name)
				assert.Equal(t, []string{
					"bootstrap", testIP,
					"-x", DefaultSSHUser,
					"-P", "defaultpw",
					"-N", "ephemeral_4217",
					"-r", "recipe[base]",
				}, args)

				return "Bootstrapping node ephemeral_4217", "", nil
			})

		cfg := bootstrapTestConfig(t, dir)
		cfg.Runner = runner
		cfg.Prober = openAfter(2)

		c, err := Attach(ctx, testNodeName, 4217, cfg)
		require.NoError(t, err)

		ok, err := c.Bootstrap(ctx, BootstrapOptions{RunList: "recipe[base]"})

		require.NoError(t, err)
		assert.True(t, ok)
		runner.AssertExpectations()
	})

	t.Run("bootstrap process failure is non-fatal", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return "", "ERROR: Connection refused", assert.AnError
			})

		cfg := bootstrapTestConfig(t, dir)
		cfg.Runner = runner
		cfg.Prober = openAfter(0)

		c, err := Attach(ctx, testNodeName, 4217, cfg)
		require.NoError(t, err)

		ok, err := c.Bootstrap(ctx, BootstrapOptions{})

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ssh poll budget exhausted", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))

		cfg := bootstrapTestConfig(t, dir)
		cfg.SSHPollBudget = 2
		cfg.Prober = proberFunc(func(context.Context, string, int) probe.Result {
			return probe.Result{Status: probe.StatusClosed}
		})

		c, err := Attach(ctx, testNodeName, 4217, cfg)
		require.NoError(t, err)

		_, err = c.Bootstrap(ctx, BootstrapOptions{})

		require.ErrorIs(t, err, ErrTimeoutExceeded)
	})

	t.Run("probe errors propagate", func(t *testing.T) {
		dir := directoryfake.New(t).PutVM(runningVM(4217))

		cfg := bootstrapTestConfig(t, dir)
		cfg.Prober = proberFunc(func(context.Context, string, int) probe.Result {
			return probe.Result{Status: probe.StatusError, Err: assert.AnError}
		})

		c, err := Attach(ctx, testNodeName, 4217, cfg)
		require.NoError(t, err)

		_, err = c.Bootstrap(ctx, BootstrapOptions{})

		require.ErrorIs(t, err, assert.AnError)
	})
}
