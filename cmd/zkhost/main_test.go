package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkhost/pkg/types"
)

func TestParseBackend(t *testing.T) {
	tag, ok := parseBackend("groth16")
	require.True(t, ok)
	assert.Equal(t, types.BackendGroth16, tag)

	tag, ok = parseBackend("receipt")
	require.True(t, ok)
	assert.Equal(t, types.BackendReceipt, tag)

	_, ok = parseBackend("plonk")
	assert.False(t, ok)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"1024", "0x10"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1024, 16}, params)

	_, err = parseParams([]string{"-1"})
	require.Error(t, err)
}

func TestParseDataFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))

	memory, err := parseDataFlags([]string{"0x400:" + path})
	require.NoError(t, err)
	assert.Equal(t, map[uint32][]byte{1024: {1, 2, 3}}, memory)

	memory, err = parseDataFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, memory)

	_, err = parseDataFlags([]string{"1024"})
	require.Error(t, err)

	_, err = parseDataFlags([]string{"0x1ffffffff:" + path})
	require.Error(t, err)

	_, err = parseDataFlags([]string{"0:" + filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestRenderStats(t *testing.T) {
	out, err := renderStats(map[string]interface{}{
		"call_counts": map[string]uint64{"zk_verify": 3, "zk_verify_noir": 1},
		"status_counts": map[string]map[uint32]uint64{
			"zk_verify":      {0: 2, 3002: 1},
			"zk_verify_noir": {3003: 1},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "zk_verify_noir")
	assert.Contains(t, out, "3002×1")
	assert.Contains(t, out, "0×2 3002×1")
}
