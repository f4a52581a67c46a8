package hctl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbnet/hctlmc/hctl"
)

type fakeChecker map[string]bool

func (f fakeChecker) HasVariable(name string) bool { return f[name] }

func TestValidateAndRenameAssignsDepthNames(t *testing.T) {
	t.Parallel()

	n, err := hctl.ParseExtended("!{p}: (3{q}: ({p} & {q}))")
	require.NoError(t, err)

	renamed, err := hctl.ValidateAndRename(n, fakeChecker{"a": true})
	require.NoError(t, err)

	require.Equal(t, "x", renamed.Var())
	inner := renamed.Child()
	require.True(t, inner.IsHybrid())
	require.Equal(t, "xx", inner.Var())
}

func TestValidateAndRenameRejectsFreeVariable(t *testing.T) {
	t.Parallel()

	n, err := hctl.ParseExtended("{p}")
	require.NoError(t, err)

	_, err = hctl.ValidateAndRename(n, fakeChecker{})
	require.Error(t, err)
	var semErr *hctl.SemanticError
	require.ErrorAs(t, err, &semErr)
	require.Equal(t, hctl.FreeVariable, semErr.Kind)
}

func TestValidateAndRenameRejectsUnknownProposition(t *testing.T) {
	t.Parallel()

	n, err := hctl.ParseExtended("unknownVar")
	require.NoError(t, err)

	_, err = hctl.ValidateAndRename(n, fakeChecker{"a": true})
	require.Error(t, err)
	var semErr *hctl.SemanticError
	require.ErrorAs(t, err, &semErr)
	require.Equal(t, hctl.UnknownProposition, semErr.Kind)
}

func TestValidateAndRenameRejectsRequantification(t *testing.T) {
	t.Parallel()

	n, err := hctl.ParseExtended("!{p}: (!{p}: {p})")
	require.NoError(t, err)

	_, err = hctl.ValidateAndRename(n, fakeChecker{})
	require.Error(t, err)
	var semErr *hctl.SemanticError
	require.ErrorAs(t, err, &semErr)
	require.Equal(t, hctl.Requantified, semErr.Kind)
}

func TestValidateAndRenameRejectsJumpOverFreeVariable(t *testing.T) {
	t.Parallel()

	n, err := hctl.ParseExtended("@{p}: true")
	require.NoError(t, err)

	_, err = hctl.ValidateAndRename(n, fakeChecker{})
	require.Error(t, err)
	var semErr *hctl.SemanticError
	require.ErrorAs(t, err, &semErr)
	require.Equal(t, hctl.JumpOverFreeVariable, semErr.Kind)
}

func TestValidateAndRenameSiblingsShareShortestNames(t *testing.T) {
	t.Parallel()

	// Two unrelated, independently-bound siblings should each be renamed to "x": no
	// ancestor relationship forces them apart.
	n, err := hctl.ParseExtended("((!{p}: {p}) & (!{q}: {q}))")
	require.NoError(t, err)

	renamed, err := hctl.ValidateAndRename(n, fakeChecker{})
	require.NoError(t, err)

	require.Equal(t, "x", renamed.Left().Var())
	require.Equal(t, "x", renamed.Right().Var())
}
