// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the keys the Go sources use.
// Keys built at runtime from a literal prefix ("recommendation." + code)
// count as used for every locale key under that prefix.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location is a source position of a suspicious literal.
type Location struct {
	Filepath string
	Line     int
}

// Report is the outcome of one lint run.
type Report struct {
	Used         map[string]struct{}
	Prefixes     []string
	Primary      map[string]struct{}
	Orphaned     []string
	Missing      map[string][]string
	Undefined    []string
	Untranslated map[string][]Location
}

// Failed reports whether the run found errors. Orphaned keys and suspicious
// literals are warnings.
func (r *Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

var (
	callRe    = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	literalRe = regexp.MustCompile(`"([a-z_]+\.[A-Za-z_.]+)"`)
	prefixRe  = regexp.MustCompile(`"([a-z_]+\.)"\s*\+`)
	printRe   = regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	keyRe     = regexp.MustCompile(`^[a-z_]+\.[A-Za-z_.]+$`)
	capsRe    = regexp.MustCompile(`^[A-Z_]+$`)
	formatRe  = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

var skipDirs = map[string]struct{}{
	"tools":     {},
	"_examples": {},
	"vendor":    {},
	".git":      {},
	"testdata":  {},
}

func main() {
	root := flag.String("root", ".", "project root to scan")
	locales := flag.String("locales", "internal/i18n/locales", "directory holding the locale files")
	primary := flag.String("primary", "en.yaml", "locale file treated as the source of truth")
	flag.Parse()

	rep, err := Lint(*root, *locales, *primary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	Print(os.Stdout, rep, *primary)
	if rep.Failed() {
		os.Exit(1)
	}
}

// Lint scans root and compares the result with the locale files.
func Lint(root, localesDir, primary string) (*Report, error) {
	used, prefixes, err := findUsedKeys(root)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}
	primaryKeys, err := loadKeysFromLocale(filepath.Join(localesDir, primary))
	if err != nil {
		return nil, fmt.Errorf("loading primary locale %s: %w", primary, err)
	}
	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Used:     used,
		Prefixes: prefixes,
		Primary:  primaryKeys,
		Missing:  map[string][]string{},
	}
	for key := range primaryKeys {
		if !isUsed(key, used, prefixes) {
			rep.Orphaned = append(rep.Orphaned, key)
		}
	}
	sort.Strings(rep.Orphaned)

	for key := range used {
		if _, ok := primaryKeys[key]; ok {
			continue
		}
		if hasKnownNamespace(key, primaryKeys) {
			rep.Undefined = append(rep.Undefined, key)
		}
	}
	sort.Strings(rep.Undefined)

	for _, file := range files {
		if filepath.Base(file) == primary {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
		var missing []string
		for key := range primaryKeys {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		rep.Missing[filepath.Base(file)] = missing
	}

	rep.Untranslated, err = findUntranslatedStrings(root, primaryKeys)
	if err != nil {
		return nil, fmt.Errorf("scanning literals: %w", err)
	}
	return rep, nil
}

// Print writes a human readable report.
func Print(w io.Writer, rep *Report, primary string) {
	fmt.Fprintf(w, "%d keys used in source, %d dynamic prefixes, %d keys in %s\n\n", len(rep.Used), len(rep.Prefixes), len(rep.Primary), primary)

	fmt.Fprintln(w, "--- Orphaned keys ---")
	printList(w, "Orphaned", rep.Orphaned)

	fmt.Fprintln(w, "--- Keys used in code but not defined ---")
	printList(w, "Undefined", rep.Undefined)

	fmt.Fprintln(w, "--- Missing translations ---")
	names := make([]string, 0, len(rep.Missing))
	for name := range rep.Missing {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s:\n", name)
		printList(w, "Missing", rep.Missing[name])
	}

	fmt.Fprintln(w, "--- Potentially untranslated strings ---")
	literals := make([]string, 0, len(rep.Untranslated))
	for lit := range rep.Untranslated {
		literals = append(literals, lit)
	}
	sort.Strings(literals)
	if len(literals) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, lit := range literals {
		loc := rep.Untranslated[lit][0]
		fmt.Fprintf(w, "  - %q (%s:%d)\n", lit, loc.Filepath, loc.Line)
	}

	fmt.Fprintln(w)
	switch {
	case rep.Failed():
		fmt.Fprintln(w, "FAIL: locale files are inconsistent")
	case len(rep.Orphaned) > 0:
		fmt.Fprintln(w, "WARN: orphaned keys found")
	default:
		fmt.Fprintln(w, "OK")
	}
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  - %s: %s\n", label, it)
	}
}

func isUsed(key string, used map[string]struct{}, prefixes []string) bool {
	if _, ok := used[key]; ok {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// hasKnownNamespace reports whether key shares its first segment with a
// locale key, which separates real keys from file names like "en.yaml".
func hasKnownNamespace(key string, keys map[string]struct{}) bool {
	ns, _, _ := strings.Cut(key, ".")
	for k := range keys {
		if strings.HasPrefix(k, ns+".") {
			return true
		}
	}
	return false
}

func walkGoFiles(root string, fn func(path string, content []byte) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if _, skip := skipDirs[info.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return fn(path, content)
	})
}

// findUsedKeys collects i18n.T arguments, key-shaped literals and the
// literal prefixes of keys built by concatenation.
func findUsedKeys(root string) (map[string]struct{}, []string, error) {
	keys := make(map[string]struct{})
	prefixSet := make(map[string]struct{})
	err := walkGoFiles(root, func(_ string, content []byte) error {
		src := string(content)
		for _, m := range callRe.FindAllStringSubmatch(src, -1) {
			keys[m[1]] = struct{}{}
		}
		for _, m := range literalRe.FindAllStringSubmatch(src, -1) {
			keys[m[1]] = struct{}{}
		}
		for _, m := range prefixRe.FindAllStringSubmatch(src, -1) {
			prefixSet[m[1]] = struct{}{}
		}
		return nil
	})
	prefixes := make([]string, 0, len(prefixSet))
	for p := range prefixSet {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return keys, prefixes, err
}

// findUntranslatedStrings flags literals passed to output functions that
// look like user facing text.
func findUntranslatedStrings(root string, allKeys map[string]struct{}) (map[string][]Location, error) {
	untranslated := make(map[string][]Location)
	ignoredFuncs := map[string]struct{}{
		"Print": {}, "Println": {}, "Printf": {}, "Fatal": {}, "Fatalf": {}, "WriteString": {},
		"NewError": {}, "WrapError": {}, "Errorf": {}, "New": {}, "Debugf": {}, "Infof": {}, "Warnf": {},
		"String": {}, "StringP": {}, "StringArray": {}, "StringArrayP": {}, "StringSlice": {}, "StringSliceP": {},
		"Bool": {}, "BoolP": {}, "Int": {}, "IntP": {}, "Duration": {}, "Get": {}, "Post": {}, "Start": {},
	}
	sqlKeywords := []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE ", "ALTER ", "DROP ", "PRAGMA ", "VACUUM", "ANALYZE"}

	err := walkGoFiles(root, func(path string, content []byte) error {
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range printRe.FindAllStringSubmatch(line, -1) {
				fn, lit := m[2], m[3]
				if _, ok := ignoredFuncs[fn]; ok {
					continue
				}
				if _, ok := allKeys[lit]; ok {
					continue
				}
				if keyRe.MatchString(lit) || len(lit) < 4 || !strings.Contains(lit, " ") {
					continue
				}
				if strings.HasPrefix(lit, "file:") || strings.HasPrefix(lit, "http") || strings.HasPrefix(lit, "2006-") {
					continue
				}
				upper := strings.ToUpper(lit)
				isSQL := false
				for _, kw := range sqlKeywords {
					if strings.HasPrefix(upper, kw) {
						isSQL = true
						break
					}
				}
				if isSQL || capsRe.MatchString(lit) || formatRe.MatchString(lit) {
					continue
				}
				untranslated[lit] = append(untranslated[lit], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return untranslated, err
}

// loadKeysFromLocale reads a locale file and returns its flattened keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML turns nested maps into dot separated keys. Flat files with
// dotted keys pass through unchanged.
func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	case []any:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
