package services

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAvailablePort_SkipsTaken(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	taken := listener.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort("127.0.0.1", taken, taken+10)

	require.NoError(t, err)
	assert.NotEqual(t, taken, port)
	assert.LessOrEqual(t, port, taken+10)
}

func TestFindAvailablePort_NoneFree(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	taken := listener.Addr().(*net.TCPAddr).Port

	_, err = FindAvailablePort("", taken, taken)

	assert.ErrorContains(t, err, "no available port")
}
