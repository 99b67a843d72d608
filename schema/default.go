package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

// Well-known names in the custom battle permissions table.
const (
	PermissionsTable  = "units_custom_battle_permissions_tables"
	GeneralUnitColumn = "general_unit"
)

//go:embed default_catalogue.json
var defaultCatalogueJSON []byte

var defaultCatalogue = sync.OnceValue(func() *Catalogue {
	c, err := LoadCatalogue(bytes.NewReader(defaultCatalogueJSON))
	if err != nil {
		panic(fmt.Sprintf("schema: embedded catalogue: %v", err))
	}
	return c
})

// Default returns the built-in catalogue, which knows the custom battle
// permissions table.
func Default() *Catalogue {
	return defaultCatalogue()
}

const tablePrefix = `db\`

// TableName returns the table a virtual path belongs to when the path has the
// form db\<table>\<fragment>.
func TableName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, tablePrefix)
	if !ok {
		return "", false
	}
	name, _, ok := strings.Cut(rest, `\`)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// TablePath returns the virtual path of a fragment of table.
func TablePath(table, fragment string) string {
	return tablePrefix + table + `\` + fragment
}
