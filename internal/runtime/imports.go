package runtime

import (
	"fmt"
	"strings"

	"github.com/vk/ftmpl/internal/parser"
)

// importedName is one name listed by a from-import.
type importedName struct {
	Name string
	As   string
}

// importSpec is a parsed import statement. A from-import has Names or All
// set; a plain import binds the whole module under Namespace.
type importSpec struct {
	Module    string
	Namespace string
	From      bool
	All       bool
	Names     []importedName
}

// parseImport parses "import a.b [as x], c" and
// "from a.b import f [as g], h" statements. A plain import with several
// modules yields one spec per module.
func parseImport(text string) ([]importSpec, error) {
	keyword, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	rest = strings.TrimSpace(rest)

	switch keyword {
	case "import":
		var specs []importSpec
		for _, item := range strings.Split(rest, ",") {
			name, alias, err := nameAndAlias(item)
			if err != nil {
				return nil, err
			}
			if !isModuleName(name) {
				return nil, fmt.Errorf("%q is not a valid module name", name)
			}
			ns := alias
			if ns == "" {
				ns = strings.ReplaceAll(name, ".", "::")
			}
			specs = append(specs, importSpec{Module: name, Namespace: ns})
		}
		return specs, nil

	case "from":
		module, list, ok := strings.Cut(rest, " import ")
		module = strings.TrimSpace(module)
		if !ok {
			return nil, fmt.Errorf("expected \"from MODULE import NAMES\"")
		}
		if !isModuleName(module) {
			return nil, fmt.Errorf("%q is not a valid module name", module)
		}
		spec := importSpec{Module: module, From: true}
		if strings.TrimSpace(list) == "*" {
			spec.All = true
			return []importSpec{spec}, nil
		}
		for _, item := range strings.Split(list, ",") {
			name, alias, err := nameAndAlias(item)
			if err != nil {
				return nil, err
			}
			if !parser.IsIdentifier(name) {
				return nil, fmt.Errorf("%q is not a valid function name", name)
			}
			if alias == "" {
				alias = name
			}
			spec.Names = append(spec.Names, importedName{Name: name, As: alias})
		}
		return []importSpec{spec}, nil
	}
	return nil, fmt.Errorf("unknown import statement %q", keyword)
}

func nameAndAlias(item string) (string, string, error) {
	fields := strings.Fields(item)
	switch {
	case len(fields) == 1:
		return fields[0], "", nil
	case len(fields) == 3 && fields[1] == "as":
		if !parser.IsIdentifier(fields[2]) {
			return "", "", fmt.Errorf("%q is not a valid alias", fields[2])
		}
		return fields[0], fields[2], nil
	case len(fields) == 0:
		return "", "", fmt.Errorf("empty name in import list")
	}
	return "", "", fmt.Errorf("cannot parse %q; expected NAME or NAME as ALIAS", strings.TrimSpace(item))
}

func isModuleName(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if !parser.IsIdentifier(part) {
			return false
		}
	}
	return true
}
