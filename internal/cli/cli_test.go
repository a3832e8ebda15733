package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/seeder"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"start", "migrate", "seed", "worker"}, names)

	migrate, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	steps, err := migrate.Flags().GetInt("steps")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
}

func TestSeedOptionsFromFlags(t *testing.T) {
	cmd := newSeedCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--users", "3", "--orders", "7", "--seed", "99", "--admin-email", "ops@example.com"}))

	opts, err := seedOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Users)
	assert.Equal(t, 7, opts.Orders)
	assert.Equal(t, uint64(99), opts.Seed)
	assert.Equal(t, "ops@example.com", opts.AdminEmail)
	assert.Equal(t, seeder.DefaultOptions().AdminPassword, opts.AdminPassword)
}

func TestSeedOptionsRejectNegativeCounts(t *testing.T) {
	cmd := newSeedCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--orders", "-1"}))

	_, err := seedOptions(cmd)
	assert.Error(t, err)
}
