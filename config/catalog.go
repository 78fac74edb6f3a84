package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProductDef is one catalog entry as written in catalog.yaml.
type ProductDef struct {
	SKU         string             `yaml:"sku"`
	Name        string             `yaml:"name"`
	Keywords    []string           `yaml:"keywords"`
	Prices      map[string]float64 `yaml:"prices"`
	Description string             `yaml:"description"`
	Image       string             `yaml:"image"`
}

// CatalogDef is the root of catalog.yaml.
type CatalogDef struct {
	Products []ProductDef `yaml:"products"`
}

// ShippingDef is the shipping fee table as written in shipping_rules.yaml.
type ShippingDef struct {
	ValidZones     []int    `yaml:"valid_zones"`
	PremiumZones   []string `yaml:"premium_zones"`
	Departments    []string `yaml:"departments"`
	StandardCost   float64  `yaml:"standard_cost"`
	PremiumCost    float64  `yaml:"premium_cost"`
	DepartmentCost float64  `yaml:"department_cost"`
}

// DefaultShippingDef is used when no shipping rule file exists. The figures
// match the storefront's standing rates: city zones 1-25 at Q25, premium
// surcharge Q30, departmental shipping Q35.
func DefaultShippingDef() *ShippingDef {
	zones := make([]int, 0, 25)
	for z := 1; z <= 25; z++ {
		zones = append(zones, z)
	}
	return &ShippingDef{
		ValidZones:     zones,
		StandardCost:   25,
		PremiumCost:    30,
		DepartmentCost: 35,
	}
}

// LoadCatalog reads and validates the product catalog. A missing or malformed
// catalog is a startup-fatal condition.
func LoadCatalog(path string) (*CatalogDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var def CatalogDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if err := validateCatalog(&def); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &def, nil
}

// validateCatalog checks the catalog for structural correctness and returns
// the first error encountered.
func validateCatalog(def *CatalogDef) error {
	if len(def.Products) == 0 {
		return fmt.Errorf("no products defined")
	}

	seen := make(map[string]struct{}, len(def.Products))
	for i, p := range def.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("products[%d]: name must not be empty", i)
		}
		if strings.TrimSpace(p.SKU) == "" {
			return fmt.Errorf("products[%d] (%q): sku must not be empty", i, p.Name)
		}
		if _, dup := seen[p.SKU]; dup {
			return fmt.Errorf("products[%d]: duplicate sku %q", i, p.SKU)
		}
		seen[p.SKU] = struct{}{}

		for tier, price := range p.Prices {
			if price < 0 {
				return fmt.Errorf("products[%d] (%q): price tier %q is negative", i, p.Name, tier)
			}
		}
	}
	return nil
}

// LoadShippingRules reads and validates the shipping fee table. An entirely
// absent file falls back to DefaultShippingDef; any other failure is
// startup-fatal.
func LoadShippingRules(path string) (*ShippingDef, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultShippingDef(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("shipping rules: read %s: %w", path, err)
	}

	var def ShippingDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("shipping rules: parse %s: %w", path, err)
	}
	if err := validateShipping(&def); err != nil {
		return nil, fmt.Errorf("shipping rules: %w", err)
	}
	return &def, nil
}

func validateShipping(def *ShippingDef) error {
	if len(def.ValidZones) == 0 {
		return fmt.Errorf("valid_zones must not be empty")
	}
	for i, z := range def.ValidZones {
		if z <= 0 || z > 99 {
			return fmt.Errorf("valid_zones[%d]: zone %d out of range", i, z)
		}
	}
	if def.StandardCost <= 0 {
		return fmt.Errorf("standard_cost must be positive")
	}
	if def.PremiumCost <= 0 {
		return fmt.Errorf("premium_cost must be positive")
	}
	if def.DepartmentCost <= 0 {
		return fmt.Errorf("department_cost must be positive")
	}
	for i, name := range def.PremiumZones {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("premium_zones[%d]: name must not be empty", i)
		}
	}
	for i, name := range def.Departments {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("departments[%d]: name must not be empty", i)
		}
	}
	return nil
}
