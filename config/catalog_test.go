package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "catalog.yaml", `
products:
  - sku: RAS-001
    name: Rascador para gatos
    keywords: [rascador, poste]
    prices:
      unidad: 150
      dos_unidades: 280
    description: Rascador de sisal.
    image: https://example.com/rascador.jpg
  - sku: PIN-003
    name: Pingüino rodador
    prices: {}
`)

	def, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, def.Products, 2)
	assert.Equal(t, "RAS-001", def.Products[0].SKU)
	assert.Equal(t, 150.0, def.Products[0].Prices["unidad"])
	assert.Empty(t, def.Products[1].Prices)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadCatalogValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"empty catalog",
			`products: []`,
			"no products",
		},
		{
			"missing name",
			"products:\n  - sku: A\n    name: \"\"",
			"name must not be empty",
		},
		{
			"missing sku",
			"products:\n  - name: Pelota",
			"sku must not be empty",
		},
		{
			"duplicate sku",
			"products:\n  - {sku: A, name: Pelota}\n  - {sku: A, name: Hueso}",
			"duplicate sku",
		},
		{
			"negative price",
			"products:\n  - sku: A\n    name: Pelota\n    prices: {unidad: -5}",
			"negative",
		},
		{
			"not yaml",
			"{{{",
			"parse",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadCatalog(writeFile(t, "catalog.yaml", tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadShippingRules(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "shipping.yaml", `
valid_zones: [1, 2, 3]
premium_zones: [Fraijanes]
departments: [Escuintla]
standard_cost: 25
premium_cost: 30
department_cost: 35
`)

	def, err := LoadShippingRules(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, def.ValidZones)
	assert.Equal(t, 30.0, def.PremiumCost)
}

func TestLoadShippingRulesDefaultWhenAbsent(t *testing.T) {
	t.Parallel()

	def, err := LoadShippingRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, def.ValidZones, 25)
	assert.Equal(t, 25.0, def.StandardCost)
	assert.Equal(t, 30.0, def.PremiumCost)
	assert.Equal(t, 35.0, def.DepartmentCost)
	assert.Empty(t, def.PremiumZones)
	assert.Empty(t, def.Departments)
}

func TestLoadShippingRulesValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"no zones",
			"standard_cost: 25\npremium_cost: 30\ndepartment_cost: 35",
			"valid_zones",
		},
		{
			"zone out of range",
			"valid_zones: [0]\nstandard_cost: 25\npremium_cost: 30\ndepartment_cost: 35",
			"out of range",
		},
		{
			"zero cost",
			"valid_zones: [1]\nstandard_cost: 0\npremium_cost: 30\ndepartment_cost: 35",
			"standard_cost",
		},
		{
			"blank premium name",
			"valid_zones: [1]\npremium_zones: [\" \"]\nstandard_cost: 25\npremium_cost: 30\ndepartment_cost: 35",
			"premium_zones",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadShippingRules(writeFile(t, "shipping.yaml", tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
