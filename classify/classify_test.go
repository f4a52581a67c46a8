package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/symbnet/hctlmc/classify"
	"github.com/symbnet/hctlmc/hctl"
	"github.com/symbnet/hctlmc/symbolic/symbolictest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// twoColourGraph has one variable "a" and two colours: colour 0 toggles a every step (a
// strongly connected 2-cycle), colour 1 never changes state at all (every state is its
// own self-loop). The two colours are chosen to behave differently under reachability
// formulas, so classification has something real to partition on.
func twoColourGraph() *symbolictest.Graph {
	update := func(colour int, state uint64) uint64 {
		if colour == 0 {
			return state ^ 1
		}
		return state
	}
	return symbolictest.NewGraph([]string{"a"}, 2, 0, update)
}

func TestRunPartitionsByProperty(t *testing.T) {
	t.Parallel()

	g := twoColourGraph()
	// EF a holds in every state of colour 0 (its 2-cycle reaches a=1 from either state)
	// but fails at colour 1's a=0 state (stuck there forever), so the two colours land
	// in different classes.
	efA := hctl.NewUnary(hctl.EF, hctl.NewProposition("a"))

	classes, err := classify.Run(g, nil, []*hctl.Node{efA}, classify.Options{})
	require.NoError(t, err)
	require.Len(t, classes, 2)

	var trueSize, falseSize float64
	for _, c := range classes {
		require.Len(t, c.Holds, 1)
		if c.Holds[0] {
			trueSize = c.Colours.Size()
		} else {
			falseSize = c.Colours.Size()
		}
	}
	require.Equal(t, 2.0, trueSize, "colour 0, both states")
	require.Equal(t, 2.0, falseSize, "colour 1, both states")
}

func TestRunAssertionNarrowsToSurvivingColour(t *testing.T) {
	t.Parallel()

	g := twoColourGraph()
	// AG(EF a) holds everywhere for colour 0 (strongly connected) but fails at colour
	// 1's a=0 state, so only colour 0 survives as a mandatory assertion.
	assertion := hctl.NewUnary(hctl.AG, hctl.NewUnary(hctl.EF, hctl.NewProposition("a")))

	classes, err := classify.Run(g, []*hctl.Node{assertion}, nil, classify.Options{})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Empty(t, classes[0].Holds)
	require.Equal(t, 2.0, classes[0].Colours.Size())
}

func TestRunNoSurvivingColoursReturnsNilNil(t *testing.T) {
	t.Parallel()

	g := twoColourGraph()
	assertion := hctl.NewConstant(false)

	classes, err := classify.Run(g, []*hctl.Node{assertion}, nil, classify.Options{})
	require.NoError(t, err)
	require.Nil(t, classes)
}

func TestRunSortsByDescendingSizeThenHolds(t *testing.T) {
	t.Parallel()

	g := twoColourGraph()
	efA := hctl.NewUnary(hctl.EF, hctl.NewProposition("a"))
	a := hctl.NewProposition("a")

	classes, err := classify.Run(g, nil, []*hctl.Node{efA, a}, classify.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, classes)

	for i := 1; i < len(classes); i++ {
		prev, cur := classes[i-1], classes[i]
		require.GreaterOrEqual(t, prev.Colours.Size(), cur.Colours.Size())
	}
}
