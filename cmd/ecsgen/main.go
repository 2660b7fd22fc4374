// Command ecsgen scans a package for types carrying an ecsgen:component
// directive and writes a registration function for them, so component lists
// never drift from the component declarations. Run it through go generate:
//
//	//go:generate go run github.com/plus3/blockfall/cmd/ecsgen
//
// The directive goes in the type's doc comment:
//
//	// Position is a logical grid coordinate.
//	//
//	//ecsgen:component
//	type Position struct{ X, Y int }
package main

import (
	"bytes"
	"flag"
	"go/ast"
	"go/format"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

const directive = "//ecsgen:component"

const ecsImportPath = "github.com/plus3/blockfall/ecs"

var fileTemplate = template.Must(template.New("register").Parse(`// Code generated by ecsgen; DO NOT EDIT.

package {{.Package}}

import "{{.EcsImport}}"

// RegisterComponents registers every ecsgen:component type in this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
{{- range .Components}}
	ecs.RegisterComponent[{{.}}](registry)
{{- end}}
}
`))

type templateData struct {
	Package    string
	EcsImport  string
	Components []string
}

func main() {
	out := flag.String("out", "register_gen.go", "Output file name, relative to the scanned package directory.")
	flag.Parse()

	pattern := "."
	if flag.NArg() > 0 {
		pattern = flag.Arg(0)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", pattern, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	if len(pkgs) != 1 {
		log.Fatalf("Expected one package for %s, got %d", pattern, len(pkgs))
	}
	pkg := pkgs[0]

	components := collectComponents(pkg)
	if len(components) == 0 {
		log.Fatalf("No %s directives found in package %s", directive, pkg.Name)
	}
	sort.Strings(components)

	var buf bytes.Buffer
	err = fileTemplate.Execute(&buf, templateData{
		Package:    pkg.Name,
		EcsImport:  ecsImportPath,
		Components: components,
	})
	if err != nil {
		log.Fatalf("Failed to render registration: %v", err)
	}

	source, err := format.Source(buf.Bytes())
	if err != nil {
		log.Fatalf("Generated code does not parse: %v", err)
	}

	path := filepath.Join(packageDir(pkg), *out)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("Wrote %s with %d components", path, len(components))
}

// collectComponents returns the names of all types whose doc comment carries
// the directive. A directive on a grouped type declaration applies to every
// type in the group.
func collectComponents(pkg *packages.Package) []string {
	var names []string
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if hasDirective(genDecl.Doc) || hasDirective(typeSpec.Doc) {
					names = append(names, typeSpec.Name.Name)
				}
			}
		}
	}
	return names
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		if strings.TrimSpace(comment.Text) == directive {
			return true
		}
	}
	return false
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		log.Fatalf("Package %s has no Go files", pkg.Name)
	}
	return filepath.Dir(pkg.GoFiles[0])
}
