// Package extract derives Thrift IDL from Go source code. Struct
// types carrying `thrift` field tags become struct declarations, so
// an existing Go data model can be exposed over the binary protocol
// without writing the IDL by hand.
package extract

import (
	"fmt"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a new package loader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports,
		},
	}
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns ...string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("huckleberry: failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("huckleberry: package errors: %v", errs[0])
	}
	return pkgs, nil
}
