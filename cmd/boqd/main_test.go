package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/boqd/internal/config"
)

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Foundation works
rows:
  - position: "1.1"
    description: Excavation for foundation
    quantity: 120
    unit: m3
    unit_price: 18.5
context:
  location: site A
project:
  name: Office building A
  budget_constraint: "150000"
`), 0o600))

	input, err := readInput(path)
	require.NoError(t, err)

	assert.Equal(t, "Foundation works", input.Title)
	require.Len(t, input.Rows, 1)
	assert.Equal(t, "1.1", input.Rows[0].Position)
	assert.Equal(t, 120.0, input.Rows[0].Quantity)
	assert.Equal(t, 18.5, input.Rows[0].UnitPrice)
	assert.Equal(t, "site A", input.Context["location"])
	assert.Equal(t, "150000", input.Project.BudgetConstraint)
	assert.True(t, input.Project.HasBudget())
}

func TestReadInput_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: [broken"), 0o600))

	_, err := readInput(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing work item")
}

func TestReadInput_MissingFile(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading work item")
}

func TestBuildInvoker(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, buildInvoker(&cfg))

	cfg.Analyzer.RateLimit.RPS = 10
	cfg.Analyzer.RateLimit.Burst = 2
	assert.NotNil(t, buildInvoker(&cfg))
}

func TestRunRoles(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runRoles(cmd, nil))

	assert.Contains(t, out.String(), "document_validator\n")
	assert.Contains(t, out.String(), "structural (after [document_validator])")
	assert.Contains(t, out.String(), "cost (after [structural materials])")
}
