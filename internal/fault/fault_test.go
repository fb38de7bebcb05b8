package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFault_ErrorText(t *testing.T) {
	t.Parallel()

	f := New(KindConfig, "limits.max_size must be > 0")
	require.Equal(t, "config fault: limits.max_size must be > 0", f.Error())

	wrapped := Wrap(KindTransport, "bind socket", errors.New("address already in use"))
	require.Equal(t, "transport fault: bind socket: address already in use", wrapped.Error())
}

func TestFault_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	f := Wrap(KindScheduler, "parse canceled", cause)

	require.ErrorIs(t, f, cause)
	require.ErrorIs(t, fmt.Errorf("session: %w", f), cause)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	f := New(KindTransport, "accept failed")
	k, ok := KindOf(fmt.Errorf("server: %w", f))
	require.True(t, ok)
	require.Equal(t, KindTransport, k)

	_, ok = KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestIsKind(t *testing.T) {
	t.Parallel()

	f := New(KindConfig, "bad policy")
	require.True(t, IsKind(f, KindConfig))
	require.False(t, IsKind(f, KindTransport))
	require.False(t, IsKind(errors.New("plain"), KindConfig))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	cases := map[Kind]string{
		KindConfig:    "config",
		KindTransport: "transport",
		KindScheduler: "scheduler",
		Kind(99):      "unknown",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}
