package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/repository/memory"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	stores := memory.New()

	sum, err := seedDemo(ctx, stores, demoOptions{Departments: 2, Forms: 5, By: "seed"})
	require.NoError(t, err)
	assert.Equal(t, &summary{Departments: 2, Pillars: 6, Forms: 5, Assigned: 10}, sum)

	forms, err := stores.Forms.FindAll(ctx)
	require.NoError(t, err)
	titles := make([]string, len(forms))
	for i, f := range forms {
		titles[i] = f.Title
		assert.NotEmpty(t, f.Elements)
	}
	assert.Contains(t, titles, "Publications 2")

	assigned, err := stores.Assigned.Find(ctx, kpi.Filter{Status: kpi.StatusPending})
	require.NoError(t, err)
	assert.Len(t, assigned, 10)
}

func TestSeedDemoRejectsNegativeCounts(t *testing.T) {
	_, err := seedDemo(context.Background(), memory.New(), demoOptions{Departments: -1})
	assert.Error(t, err)
}

func TestRootCommandListsSubcommands(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "demo")
	assert.Contains(t, out.String(), "indexes")
}
