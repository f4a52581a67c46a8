package evalctx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/symbnet/hctlmc/dedup"
	"github.com/symbnet/hctlmc/evalctx"
	"github.com/symbnet/hctlmc/symbolic"
	"github.com/symbnet/hctlmc/symbolic/symbolictest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testGraph() *symbolictest.Graph {
	return symbolictest.NewGraph([]string{"a"}, 1, 0, func(_ int, state uint64) uint64 { return state ^ 1 })
}

func TestExtendWithWildCardsPrimesCacheHit(t *testing.T) {
	t.Parallel()

	g := testGraph()
	ctx := evalctx.New(map[dedup.Key]int{})

	ctx.ExtendWithWildCards(map[string]symbolic.ColouredSet{"w": g.Unit()})

	key := dedup.Key{Canonical: "%w%"}
	require.Equal(t, 1, ctx.Duplicates[key])
	entry, ok := ctx.Cache[key]
	require.True(t, ok)
	require.True(t, entry.Result.Equals(g.Unit()))
}

func TestExtendWithDomainsPopulatesDomainSets(t *testing.T) {
	t.Parallel()

	g := testGraph()
	ctx := evalctx.New(map[dedup.Key]int{})
	ctx.ExtendWithDomains(map[string]symbolic.ColouredSet{"d": g.Empty()})

	set, ok := ctx.DomainSets["d"]
	require.True(t, ok)
	require.True(t, set.IsEmpty())
}

func TestPushPopFreeVar(t *testing.T) {
	t.Parallel()

	ctx := evalctx.New(map[dedup.Key]int{})
	label := "dom"
	ctx.PushFreeVar("x", &label)
	require.Equal(t, map[string]*string{"x": &label}, ctx.FreeVarDomains())

	ctx.PushFreeVar("y", nil)
	domains := ctx.FreeVarDomains()
	require.Len(t, domains, 2)
	require.Nil(t, domains["y"])

	ctx.PopFreeVar()
	ctx.PopFreeVar()
	require.Empty(t, ctx.FreeVarDomains())
}

func TestDumpCacheUncompressedAndCompressed(t *testing.T) {
	t.Parallel()

	ctx := evalctx.New(map[dedup.Key]int{{Canonical: "a"}: 1})
	ctx.ExtendWithDomains(map[string]symbolic.ColouredSet{"d": testGraph().Empty()})

	var plain bytes.Buffer
	require.NoError(t, ctx.DumpCache(&plain, false))
	require.NotEmpty(t, plain.Bytes())

	var compressed bytes.Buffer
	require.NoError(t, ctx.DumpCache(&compressed, true))
	require.NotEmpty(t, compressed.Bytes())
}
