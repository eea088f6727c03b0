//go:build unit

package onecli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/testenv-vm/internal/util/fakes/runnerfake"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
)

const templatePoolXML = `<VMTEMPLATE_POOL>
  <VMTEMPLATE>
    <ID>12</ID>
    <UID>3</UID>
    <NAME>web-server</NAME>
    <REGTIME>1755170000</REGTIME>
  </VMTEMPLATE>
  <VMTEMPLATE>
    <ID>13</ID>
    <UID>3</UID>
    <NAME>web-server-2</NAME>
    <REGTIME>1755170100</REGTIME>
  </VMTEMPLATE>
</VMTEMPLATE_POOL>`

const vmPoolXML = `<VM_POOL>
  <VM>
    <ID>4217</ID>
    <NAME>node-a</NAME>
    <STATE>3</STATE>
    <LCM_STATE>3</LCM_STATE>
    <TEMPLATE>
      <CPU><![CDATA[1]]></CPU>
      <NIC>
        <MAC>02:00:c0:a8:00:11</MAC>
        <NETWORK>lab</NETWORK>
      </NIC>
    </TEMPLATE>
  </VM>
  <VM>
    <ID>4220</ID>
    <NAME>node-b</NAME>
    <STATE>1</STATE>
    <LCM_STATE>0</LCM_STATE>
    <TEMPLATE>
      <CPU><![CDATA[2]]></CPU>
    </TEMPLATE>
  </VM>
</VM_POOL>`

func TestListTemplates(t *testing.T) {
	runner := runnerfake.New(t).AppendExpectation(
		func(_ context.Context, _, name string, args []string) (string, string, error) {
			assert.Equal(t, "onetemplate", name)
			assert.Equal(t, []string{"list", "--xml"}, args)

			return templatePoolXML, "", nil
		})

	templates, err := New(runner, Options{}).ListTemplates(context.Background())

	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, directory.Template{ID: 12, Name: "web-server"}, templates[0])
	assert.Equal(t, directory.Template{ID: 13, Name: "web-server-2"}, templates[1])
	runner.AssertExpectations()
}

func TestFindTemplateByName(t *testing.T) {
	tests := []struct {
		name        string
		lookup      string
		expectedID  int
		expectedErr error
	}{
		{name: "exact match", lookup: "web-server", expectedID: 12},
		{name: "exact match on longer name", lookup: "web-server-2", expectedID: 13},
		{name: "prefix does not match", lookup: "web", expectedErr: directory.ErrTemplateNotFound},
		{name: "missing template", lookup: "db-server", expectedErr: directory.ErrTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := runnerfake.New(t).AppendExpectation(
				func(_ context.Context, _, _ string, _ []string) (string, string, error) {
					return templatePoolXML, "", nil
				})

			tpl, err := New(runner, Options{}).FindTemplateByName(context.Background(), tt.lookup)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, tpl.ID)
		})
	}
}

func TestInstantiate(t *testing.T) {
	t.Run("parses the new vm id", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, name string, args []string) (string, string, error) {
				assert.Equal(t, "onetemplate", name)
				assert.Equal(t, []string{"instantiate", "12", "--name", "ephemeral-20250812T101500Z"}, args)

				return "VM ID: 4217\n", "", nil
			})

		id, err := New(runner, Options{}).Instantiate(context.Background(),
			directory.Template{ID: 12, Name: "web-server"}, "ephemeral-20250812T101500Z")

		require.NoError(t, err)
		assert.Equal(t, 4217, id)
	})

	t.Run("provider failure surfaces as ProviderError", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return "", "[one.template.instantiate] Error: quota exceeded", assert.AnError
			})

		_, err := New(runner, Options{}).Instantiate(context.Background(),
			directory.Template{ID: 12}, "x")

		provErr := &directory.ProviderError{}
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "instantiate", provErr.Op)
		assert.Contains(t, provErr.Output, "quota exceeded")
	})

	t.Run("unparsable output is an error", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return "unexpected banner", "", nil
			})

		_, err := New(runner, Options{}).Instantiate(context.Background(),
			directory.Template{ID: 12}, "x")

		require.ErrorIs(t, err, errParseOutput)
	})
}

func TestListVMs(t *testing.T) {
	runner := runnerfake.New(t).AppendExpectation(
		func(_ context.Context, _, name string, args []string) (string, string, error) {
			assert.Equal(t, "onevm", name)
			assert.Equal(t, []string{"list", "--xml"}, args)

			return vmPoolXML, "", nil
		})

	vms, err := New(runner, Options{}).ListVMs(context.Background())

	require.NoError(t, err)
	require.Len(t, vms, 2)

	assert.Equal(t, 4217, vms[0].ID)
	assert.Equal(t, directory.StateActive, vms[0].State)
	assert.Equal(t, directory.LCMRunning, vms[0].LCMState)

	mac, ok := vms[0].PrimaryMAC()
	require.True(t, ok)
	assert.Equal(t, "02:00:c0:a8:00:11", mac)

	assert.Equal(t, directory.StatePending, vms[1].State)
	_, ok = vms[1].PrimaryMAC()
	assert.False(t, ok)
}

func TestFindVMByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return vmPoolXML, "", nil
			})

		vm, err := New(runner, Options{}).FindVMByID(context.Background(), 4220)

		require.NoError(t, err)
		assert.Equal(t, "node-b", vm.Name)
	})

	t.Run("missing id", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return vmPoolXML, "", nil
			})

		_, err := New(runner, Options{}).FindVMByID(context.Background(), 9999)

		require.ErrorIs(t, err, directory.ErrVMNotFound)
	})
}

func TestFinalize(t *testing.T) {
	t.Run("terminates hard", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, name string, args []string) (string, string, error) {
				assert.Equal(t, "onevm", name)
				assert.Equal(t, []string{"terminate", "--hard", "4217"}, args)

				return "", "", nil
			})

		err := New(runner, Options{}).Finalize(context.Background(), 4217)

		require.NoError(t, err)
		runner.AssertExpectations()
	})

	t.Run("provider failure", func(t *testing.T) {
		runner := runnerfake.New(t).AppendExpectation(
			func(_ context.Context, _, _ string, _ []string) (string, string, error) {
				return "", "[one.vm.action] Error: VM 4217 does not exist", assert.AnError
			})

		err := New(runner, Options{}).Finalize(context.Background(), 4217)

		provErr := &directory.ProviderError{}
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "terminate", provErr.Op)
	})
}

func TestOptionsOverrideCommands(t *testing.T) {
	runner := runnerfake.New(t).AppendExpectation(
		func(_ context.Context, _, name string, _ []string) (string, string, error) {
			assert.Equal(t, "/opt/one/bin/onetemplate", name)

			return `<VMTEMPLATE_POOL/>`, "", nil
		})

	_, err := New(runner, Options{
		TemplateCommand: "/opt/one/bin/onetemplate",
		VMCommand:       "/opt/one/bin/onevm",
	}).ListTemplates(context.Background())

	require.NoError(t, err)
}
