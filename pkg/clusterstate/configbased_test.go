package clusterstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigBasedBackendsReturnsConfiguredSet(t *testing.T) {
	c := NewConfigBased(map[string][]string{
		"app1": {"10.0.0.1:9000", "10.0.0.2:9000"},
	})

	assert.True(t, c.WatchApplication("app1"))
	assert.Equal(t, []string{"10.0.0.1:9000", "10.0.0.2:9000"}, c.Backends("app1"))
}

func TestConfigBasedUnknownAppReturnsEmpty(t *testing.T) {
	c := NewConfigBased(map[string][]string{"app1": {"10.0.0.1:9000"}})
	assert.Empty(t, c.Backends("app2"))
}

func TestConfigBasedIsInsulatedFromCallerMutation(t *testing.T) {
	table := map[string][]string{"app1": {"10.0.0.1:9000"}}
	c := NewConfigBased(table)

	table["app1"][0] = "mutated"

	assert.Equal(t, []string{"10.0.0.1:9000"}, c.Backends("app1"))
}

func TestConfigBasedBackendsReturnsACopy(t *testing.T) {
	c := NewConfigBased(map[string][]string{"app1": {"10.0.0.1:9000"}})

	got := c.Backends("app1")
	got[0] = "mutated"

	assert.Equal(t, []string{"10.0.0.1:9000"}, c.Backends("app1"))
}
