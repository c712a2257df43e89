package dbcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscan/errors"
)

const testCatalog = `
objects:
  .com.infoblox.dns.option:
    type: DHCP Option
    actions: [count, process]
    header: 'TYPE,STATUS,PARENT,OBJECT,OPTIONSPACE,OPTIONCODE,OPTIONVALUE,OBJECTLINE'
    func: dhcp_option
  .com.infoblox.dns.lease:
    type: Lease
    actions: [count, member]
    func: lease_member
  .com.infoblox.dns.dhcp_failover_association:
    type: DHCP Failover
    actions: [count, feature]
    feature: dhcp_failover
    keypair: [failover_port, "647"]
  .com.infoblox.dns.fixed_address:
    type: Fixed Address
    actions: [count, collect]
    properties: [address, match_option]
incompatible_options: [12, 124, 125, 146, 159, 212]
validate_options: [43, 151]
`

func TestParseCatalog(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, 4, c.Count())
	assert.True(t, c.Included(".com.infoblox.dns.option"))
	assert.False(t, c.Included(".com.infoblox.dns.zone"))

	assert.Equal(t, "DHCP Option", c.ObjectType(".com.infoblox.dns.option"))
	assert.Equal(t, []string{"count", "process"}, c.Actions(".com.infoblox.dns.option"))
	assert.Equal(t, "dhcp_option", c.Func(".com.infoblox.dns.option"))

	header := c.Header(".com.infoblox.dns.option")
	require.Len(t, header, 8)
	assert.Equal(t, "TYPE", header[0])
	assert.Equal(t, "OBJECTLINE", header[7])

	assert.True(t, c.IncompatibleOption(12))
	assert.True(t, c.IncompatibleOption(212))
	assert.False(t, c.IncompatibleOption(43))
	assert.True(t, c.ValidateOption(43))
	assert.True(t, c.ValidateOption(151))
	assert.False(t, c.ValidateOption(17))
}

func TestCatalogOptionalFieldDefaults(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	// Registered type with no optional fields set: defined empty defaults,
	// never an error.
	lease := ".com.infoblox.dns.lease"
	assert.Empty(t, c.Header(lease))
	assert.Empty(t, c.Properties(lease))
	assert.Empty(t, c.Feature(lease))
	assert.Nil(t, c.Keypair(lease))

	// Unregistered type: everything empty.
	assert.Empty(t, c.Actions(".com.infoblox.dns.zone"))
	assert.Empty(t, c.ObjectType(".com.infoblox.dns.zone"))
	assert.Empty(t, c.Func(".com.infoblox.dns.zone"))
}

func TestCatalogKeypair(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	kp := c.Keypair(".com.infoblox.dns.dhcp_failover_association")
	require.Len(t, kp, 2)
	assert.Equal(t, "failover_port", kp[0])
	assert.Equal(t, "647", kp[1])
	assert.Equal(t, "dhcp_failover", c.Feature(".com.infoblox.dns.dhcp_failover_association"))
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "objects: ["},
		{"no objects", "incompatible_options: [12]"},
		{
			"bad keypair arity",
			"objects:\n  .a:\n    type: A\n    actions: [feature]\n    keypair: [only_key]",
		},
		{
			"process without func",
			"objects:\n  .a:\n    type: A\n    actions: [process]",
		},
		{
			"member without func",
			"objects:\n  .a:\n    type: A\n    actions: [member]",
		},
		{
			"feature without name",
			"objects:\n  .a:\n    type: A\n    actions: [feature]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err), "want ErrConfig, got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/absent.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
