// Verifies template assets against the manifest: every variable a template
// declares must appear as a {{placeholder}} in its subject or HTML, and
// every placeholder used must be declared. Exits non-zero on any mismatch so
// CI can gate template edits.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pawme/pawme-backend/internal/templating"
)

type manifest struct {
	Templates []manifestEntry `yaml:"templates"`
}

type manifestEntry struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Subject   string   `yaml:"subject"`
	File      string   `yaml:"file"`
	Variables []string `yaml:"variables"`
}

var placeholderRe = regexp.MustCompile(`\{\{([a-z0-9_]+)\}\}`)

func main() {
	manifestPath := flag.String("manifest", "templates/manifest.yaml", "path to the template manifest")
	flag.Parse()

	raw, err := os.ReadFile(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "templatecheck: %v\n", err)
		os.Exit(1)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		fmt.Fprintf(os.Stderr, "templatecheck: failed to parse %s: %v\n", *manifestPath, err)
		os.Exit(1)
	}
	if len(m.Templates) == 0 {
		fmt.Fprintf(os.Stderr, "templatecheck: %s lists no templates\n", *manifestPath)
		os.Exit(1)
	}

	dir := filepath.Dir(*manifestPath)
	problems := 0
	for _, entry := range m.Templates {
		html, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: asset %s unreadable: %v\n", entry.ID, entry.File, err)
			problems++
			continue
		}
		content := entry.Subject + "\n" + string(html)

		declared := make(map[string]bool, len(entry.Variables))
		for _, v := range entry.Variables {
			declared[v] = true
			if !strings.Contains(content, templating.Placeholder(v)) {
				fmt.Fprintf(os.Stderr, "%s: declared variable %q never used in %s\n", entry.ID, v, entry.File)
				problems++
			}
		}

		for _, match := range placeholderRe.FindAllStringSubmatch(content, -1) {
			if !declared[match[1]] {
				fmt.Fprintf(os.Stderr, "%s: placeholder %s used in %s but not declared\n", entry.ID, match[0], entry.File)
				problems++
			}
		}
	}

	if problems > 0 {
		fmt.Fprintf(os.Stderr, "templatecheck: %d problem(s)\n", problems)
		os.Exit(1)
	}
	fmt.Printf("templatecheck: %d templates ok\n", len(m.Templates))
}
