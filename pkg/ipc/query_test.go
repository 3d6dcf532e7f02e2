package ipc_test

import (
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/internal/errs"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

func Test_Query_Enumerates_Published_Interfaces(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	_, err := table.Publish(echoDescriptor("alpha", 1))
	require.NoError(t, err)

	_, err = table.Publish(echoDescriptor("beta", 2))
	require.NoError(t, err)

	result, tok, err := table.Query("")
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, ipc.Token(0), tok)

	require.True(t, strings.Contains(result, "alpha.1.alpha.1"))
	require.True(t, strings.Contains(result, "beta.2.beta.2"))
}

func Test_QueryNext_With_Zero_Token_Is_EOF(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	_, tok, err := table.QueryNext(0)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, ipc.Token(0), tok)
}

func Test_Query_Capabilities_Of_One_Interface(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	_, err := table.Publish(echoDescriptor("echo", 1))
	require.NoError(t, err)

	result, _, err := table.Query("echo.1.echo.1")
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "echo", result)
}

func Test_Query_Capability_Names_Match_Descriptor_Exactly(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	d := spanEchoDescriptor()
	_, err := table.Publish(d)
	require.NoError(t, err)

	result, _, err := table.Query("echo.1.echo.1")
	require.ErrorIs(t, err, io.EOF)

	got := strings.Split(result, ",")
	sort.Strings(got)

	want := make([]string, len(d.Capabilities))
	for i, c := range d.Capabilities {
		want[i] = c.Name
	}

	sort.Strings(want)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("capability names mismatch (-want +got):\n%s", diff)
	}
}

func Test_Query_Unknown_Interface_Fails(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	_, _, err := table.Query("missing.1.missing.1")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}
