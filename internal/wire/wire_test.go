package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webblitchy/securevault/internal/primitives"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello, frame")
	require.NoError(t, WriteFrame(&buf, payload))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

// TestFrameSurvivesMultipleOf64 exercises exactly the fragility spec §5/§9
// name in the reference implementation's 64-byte short-read heuristic: a
// payload whose length is a multiple of 64 bytes must not hang the reader.
func TestFrameSurvivesMultipleOf64(t *testing.T) {
	for _, n := range []int{0, 64, 128, 256} {
		payload := primitives.RandomBytes(n)
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, payload))

		got, err := ReadFrame(&buf)
		require.NoError(t, err)
		require.Equal(t, payload, got)
	}
}

func TestRequestBodyUnmarshal(t *testing.T) {
	var buf bytes.Buffer
	req := AuthenticateRequest{CompanyName: "acme", UserA: "alice", UserB: "bob"}
	require.NoError(t, WriteRequest(&buf, RequestAuthenticateSession, req))

	reqType, body, err := ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, RequestAuthenticateSession, reqType)

	var got AuthenticateRequest
	require.NoError(t, UnmarshalRequestBody(body, &got))
	require.Equal(t, req, got)
}

func TestReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	listing := FilenameListing{}
	require.NoError(t, WriteReply(&buf, listing))

	var got FilenameListing
	require.NoError(t, ReadReply(&buf, &got))
	require.Empty(t, got.Files)
}

func TestStatusRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, true))
	frame, isKO, err := ReadStatusOrFrame(&buf)
	require.NoError(t, err)
	require.False(t, isKO)
	require.Equal(t, StatusOK, frame)

	buf.Reset()
	require.NoError(t, WriteStatus(&buf, false))
	frame, isKO, err = ReadStatusOrFrame(&buf)
	require.NoError(t, err)
	require.True(t, isKO)
	require.Equal(t, StatusKO, frame)
}
