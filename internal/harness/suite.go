package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is a conformance suite: a list of cases evaluated against a fresh
// registry. Cases run in file order.
type Suite struct {
	// Name uniquely identifies this suite. It names the golden report.
	Name string `yaml:"name"`

	// Description explains what this suite checks.
	Description string `yaml:"description"`

	// Seed fixes the entropy of unseeded str_shuffle and str_srand calls.
	// Zero means 1.
	Seed uint64 `yaml:"seed,omitempty"`

	// MaxRandomBytes overrides the str_srand limit for this suite.
	MaxRandomBytes int `yaml:"max_random_bytes,omitempty"`

	// Setup holds SQL statements run on the suite's database before the
	// first sql case.
	Setup []string `yaml:"setup,omitempty"`

	// Cases are the checks.
	Cases []Case `yaml:"cases"`

	// path is the file the suite was loaded from, if any.
	path string
}

// Path returns the file the suite was loaded from.
func (s *Suite) Path() string {
	return s.path
}

// Case is one check. Exactly one of Expr and SQL is set.
type Case struct {
	Name string `yaml:"name"`

	// Expr is a call expression such as str_rot13('abc').
	Expr string `yaml:"expr,omitempty"`

	// SQL is a query whose first column is checked.
	SQL string `yaml:"sql,omitempty"`

	// Expectation applies to the single value of an expr case, or to the
	// only row of a sql case.
	Expectation `yaml:",inline"`

	// ExpectBindError is the bind error code the case must fail with.
	ExpectBindError string `yaml:"expect_bind_error,omitempty"`

	// Rows holds one expectation per row of a sql case, in order.
	Rows []Expectation `yaml:"rows,omitempty"`
}

// Expectation describes one expected value. Unset fields are not checked.
type Expectation struct {
	// Expect is the exact expected bytes.
	Expect *string `yaml:"expect,omitempty"`

	// ExpectHex is the expected bytes in hex, case-insensitive.
	ExpectHex *string `yaml:"expect_hex,omitempty"`

	// ExpectNull requires a NULL value.
	ExpectNull bool `yaml:"expect_null,omitempty"`

	// ExpectLen is the expected length in bytes.
	ExpectLen *int `yaml:"expect_len,omitempty"`

	// ExpectMultisetOf requires a permutation of these bytes.
	ExpectMultisetOf *string `yaml:"expect_multiset_of,omitempty"`
}

func (e Expectation) empty() bool {
	return e.Expect == nil && e.ExpectHex == nil && !e.ExpectNull &&
		e.ExpectLen == nil && e.ExpectMultisetOf == nil
}

// LoadSuite reads and parses a suite YAML file.
// Unknown fields are rejected so that a misspelled expectation cannot
// silently pass.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	suite.path = path
	return suite, nil
}

// ParseSuite parses and validates suite YAML.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// LoadSuites loads every .yaml and .yml file under path, or path itself
// when it is a file. Suites are returned in path order.
func LoadSuites(path string) ([]*Suite, error) {
	files, err := findSuiteFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no suite files found in %s", path)
	}

	suites := make([]*Suite, 0, len(files))
	for _, f := range files {
		s, err := LoadSuite(f)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func findSuiteFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if s.MaxRandomBytes < 0 {
		return fmt.Errorf("max_random_bytes must be non-negative")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if err := validateCase(i, c); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func validateCase(index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if (c.Expr == "") == (c.SQL == "") {
		return fmt.Errorf("cases[%d] %s: exactly one of expr and sql is required", index, c.Name)
	}
	if len(c.Rows) > 0 && c.SQL == "" {
		return fmt.Errorf("cases[%d] %s: rows is only valid for sql cases", index, c.Name)
	}

	hasValue := !c.Expectation.empty()
	switch {
	case c.ExpectBindError != "":
		if hasValue || len(c.Rows) > 0 {
			return fmt.Errorf("cases[%d] %s: expect_bind_error excludes other expectations", index, c.Name)
		}
	case hasValue && len(c.Rows) > 0:
		return fmt.Errorf("cases[%d] %s: use either rows or a single expectation", index, c.Name)
	case !hasValue && len(c.Rows) == 0:
		return fmt.Errorf("cases[%d] %s: an expectation is required", index, c.Name)
	}

	for i, row := range c.Rows {
		if row.empty() {
			return fmt.Errorf("cases[%d] %s: rows[%d]: an expectation is required", index, c.Name, i)
		}
	}
	return nil
}
