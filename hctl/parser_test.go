package hctl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/symbnet/hctlmc/hctl"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseRenderRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"a",
		"true",
		"false",
		"~a",
		"(a & b)",
		"(a | (b ^ c))",
		"(a => b)",
		"(a <=> b)",
		"EX a",
		"AX a",
		"EF a",
		"AF a",
		"EG a",
		"AG a",
		"(a EU b)",
		"(a AU b)",
		"(a EW b)",
		"(a AW b)",
		"!{x}: AG EF {x}",
		"!{x}: AX {x}",
		"3{x}: (a & {x})",
		"V{x} in %dom%: {x}",
		"@{x}: a",
	}
	for _, text := range cases {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			n, err := hctl.ParseExtended(text)
			require.NoError(t, err)
			rendered := n.Render()

			again, err := hctl.ParseExtended(rendered)
			require.NoError(t, err)
			require.Equal(t, rendered, again.Render(), "re-parsing a rendered tree must reproduce the same rendering")
		})
	}
}

func TestParseRoundTripPreservesTreeShape(t *testing.T) {
	t.Parallel()

	// Render/re-parse must reproduce the identical tree, not merely an equivalent
	// rendering -- go-cmp walks the full unexported structure (atom/op fields, the
	// domain-label pointer, child pointers) where require.Equal's reflect.DeepEqual
	// would also work but give a far less useful diff on mismatch.
	n, err := hctl.ParseExtended("!{x}: (V{y} in %dom%: ({x} & {y}))")
	require.NoError(t, err)

	again, err := hctl.ParseExtended(n.Render())
	require.NoError(t, err)

	diff := cmp.Diff(n, again, cmp.AllowUnexported(hctl.Node{}))
	require.Empty(t, diff, "re-parsed tree differs from the original")
}

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	n, err := hctl.Parse("a & b | c")
	require.NoError(t, err)
	// OR binds weaker than AND: a & b | c == (a & b) | c
	require.True(t, n.IsBinary())
	require.Equal(t, hctl.OR, n.BinaryOp())
	require.True(t, n.Left().IsBinary())
	require.Equal(t, hctl.AND, n.Left().BinaryOp())
}

func TestParseRejectsWildCardWithoutExtendedMode(t *testing.T) {
	t.Parallel()

	_, err := hctl.Parse("%label%")
	require.Error(t, err)
	var lexErr *hctl.LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"(a",
		"a)",
		"()",
		"a &",
		"!{x} AG {x}",  // missing ':'
		"a !{x}: {x}",  // hybrid directly after non-hybrid operator without parens
	}
	for _, text := range cases {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			_, err := hctl.ParseExtended(text)
			require.Error(t, err)
		})
	}
}

func TestJumpRejectsDomain(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		label := "dom"
		hctl.NewHybrid(hctl.JUMP, "x", &label, hctl.NewConstant(true))
	})
}
