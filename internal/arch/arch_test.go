// internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	front := []string{"pairdp/internal/appcore", "pairdp/internal/app", "pairdp/internal/cli", "pairdp/internal/server", "pairdp/cmd/"}
	bans := map[string][]string{
		// the DP core is a library: nothing application-level
		"pairdp/core/":             {"pairdp/internal/", "pairdp/pkg/", "pairdp/cmd/"},
		"pairdp/internal/engine":   append([]string{"pairdp/internal/pipeline", "pairdp/internal/writers", "pairdp/internal/output", "pairdp/internal/pretty"}, front...),
		"pairdp/internal/pipeline": append([]string{"pairdp/internal/writers", "pairdp/internal/output"}, front...),
		"pairdp/internal/writers":  append([]string{"pairdp/internal/pipeline"}, front...),
		"pairdp/internal/output":   append([]string{"pairdp/internal/pipeline", "pairdp/internal/writers"}, front...),
		"pairdp/internal/pretty":   append([]string{"pairdp/internal/pipeline", "pairdp/internal/writers"}, front...),
		"pairdp/internal/store":    append([]string{"pairdp/internal/engine", "pairdp/internal/pipeline"}, front...),
		"pairdp/internal/server":   {"pairdp/internal/appcore", "pairdp/internal/app", "pairdp/internal/cli", "pairdp/internal/pipeline", "pairdp/cmd/"},
		"pairdp/pkg/":              {"pairdp/internal/", "pairdp/cmd/"},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "pairdp/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "pairdp/") {
					continue
				}
				for _, ban := range forbidden {
					// "app" must not match "appcore" and vice versa
					if dep == ban || strings.HasPrefix(dep, strings.TrimSuffix(ban, "/")+"/") {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
