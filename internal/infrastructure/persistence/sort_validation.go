package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DeviceSortFields contains allowed sort fields for catalog devices
var DeviceSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"category":      true,
	"brand":         true,
	"status":        true,
	"cost_price":    true,
	"selling_price": true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"is_active":  true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"username":   true,
	"email":      true,
	"full_name":  true,
	"is_active":  true,
}

// RoleSortFields contains allowed sort fields for roles
var RoleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// BuildSystemSortFields contains allowed sort fields for build system templates
var BuildSystemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"is_active":  true,
	"total_cost": true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"client_name": true,
	"status":      true,
	"total_cost":  true,
}
