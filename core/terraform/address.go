// Package terraform parses Terraform plan JSON into a resource graph.
package terraform

import (
	"regexp"
	"strings"
)

var (
	moduleNameRegexp = regexp.MustCompile(`module\.([^\[.]*)`)
	arrayIndexRegexp = regexp.MustCompile(`\[[^\]]+\]`)
)

// addressResourcePart returns the trailing two segments of an address: the
// type.name of a resource, or the module.<name> call of a module address.
func addressResourcePart(address string) string {
	parts := strings.Split(address, ".")
	if len(parts) < 2 {
		return address
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// parseModuleName extracts the module name from a child module address
// such as "module.web" or "module.web[0]".
func parseModuleName(moduleAddress string) string {
	match := moduleNameRegexp.FindStringSubmatch(moduleAddress)
	if match == nil {
		return ""
	}
	return match[1]
}

// stripAddressArray removes repetition indices ("[0]", `["key"]`) so a
// planned-values address can be matched against its configuration entry.
func stripAddressArray(address string) string {
	return arrayIndexRegexp.ReplaceAllString(address, "")
}

// stripModulePrefix returns the address without the given module prefix
func stripModulePrefix(address, moduleAddress string) string {
	if moduleAddress == "" {
		return address
	}
	return strings.TrimPrefix(address, moduleAddress+".")
}

// qualify prefixes an address with the current module path
func qualify(moduleAddress, address string) string {
	if moduleAddress == "" {
		return address
	}
	return moduleAddress + "." + address
}
