package control

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgbasaraner/libyee/internal/protocol"
)

func fastVerification(retries int) *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    retries,
		InitialDelay:  0,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 2 * time.Millisecond,
	}
}

func TestVerify_MatchesFirstRead(t *testing.T) {
	conn, transport := scriptedConn(protocol.MethodGetProp, `{"id":1, "result":["40", "on"]}`)

	result := conn.Verify(map[string]string{"power": "on", "bright": "40"}, fastVerification(3))
	require.True(t, result.Success)
	require.NoError(t, result.Error)
	require.Equal(t, 1, result.Attempts)
	require.Equal(t, map[string]string{"bright": "40", "power": "on"}, result.Actual)
	require.Equal(t, "{\"id\":1,\"method\":\"get_prop\",\"params\":[\"bright\", \"power\"]}\r\n", transport.written.String())
}

func TestVerify_RetriesUntilMatch(t *testing.T) {
	conn, _ := scriptedConn(protocol.MethodGetProp,
		`{"id":1, "result":["10"]}`,
		`{"id":1, "result":["25"]}`,
		`{"id":1, "result":["40"]}`,
	)

	result := conn.Verify(map[string]string{"bright": "40"}, fastVerification(3))
	require.True(t, result.Success)
	require.Equal(t, 3, result.Attempts)
	require.Empty(t, result.Mismatches)
}

func TestVerify_GivesUp(t *testing.T) {
	conn, _ := scriptedConn(protocol.MethodGetProp,
		`{"id":1, "result":["10"]}`,
		`{"id":1, "result":["10"]}`,
	)

	result := conn.Verify(map[string]string{"bright": "40"}, fastVerification(1))
	require.False(t, result.Success)
	require.Equal(t, 2, result.Attempts)
	require.Equal(t, []string{"bright: expected 40, got 10"}, result.Mismatches)
	require.Error(t, result.Error)
}

func TestVerify_StopsOnNonRetryableError(t *testing.T) {
	conn, _ := scriptedConn(protocol.MethodGetProp, `{"id":1, "error":{"code":-1, "message":"client quota exceeded"}}`)

	result := conn.Verify(map[string]string{"bright": "40"}, fastVerification(3))
	require.False(t, result.Success)
	require.Equal(t, 1, result.Attempts)
	require.True(t, IsErrorResponse(result.Error))
}

func TestVerify_RetriesIOError(t *testing.T) {
	transport := &scriptedTransport{readErr: errors.New("connection reset")}
	conn := NewConn(testDevice(protocol.MethodGetProp), transport, fixedID(1))

	result := conn.Verify(map[string]string{"bright": "40"}, fastVerification(2))
	require.False(t, result.Success)
	require.Equal(t, 3, result.Attempts)
	require.True(t, IsIOError(result.Error))
}

func TestVerify_NothingExpected(t *testing.T) {
	conn, transport := scriptedConn(protocol.MethodGetProp)

	result := conn.Verify(nil, nil)
	require.True(t, result.Success)
	require.Zero(t, transport.writes)
}

func TestExpectedProps(t *testing.T) {
	values := map[string]string{"power": "on"}
	require.Equal(t, values, ExpectedProps(MainLight, values))
	require.Equal(t, map[string]string{"bg_power": "on"}, ExpectedProps(BackgroundLight, values))
}
