package auth

import "strings"

// Roles carried in JWT claims and checked by Authz.
const (
	// RoleAdmin has full access to every endpoint and method.
	RoleAdmin = "admin"
	// RoleViewer has read-only access to campaigns and posts.
	RoleViewer = "viewer"
)

// Permission lists the HTTP methods and path patterns a role may use.
// Path patterns ending in "/*" match the prefix and all subpaths; "/*"
// alone matches everything.
type Permission struct {
	AllowedMethods []string
	AllowedPaths   []string
}

// RolePermissions maps each role to what it may do. OPTIONS is allowed
// for both roles so CORS preflights succeed.
var RolePermissions = map[string]Permission{
	RoleAdmin: {
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedPaths:   []string{"/*"},
	},
	RoleViewer: {
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedPaths: []string{
			"/posts",
			"/posts/*",
			"/campaigns",
			"/campaigns/*",
			"/swagger/*",
		},
	},
}

// checkRolePermission reports whether role may invoke method on path.
// Unknown and empty roles are always denied.
func checkRolePermission(role, method, path string) bool {
	perm, ok := RolePermissions[role]
	if !ok {
		return false
	}
	methodOK := false
	for _, m := range perm.AllowedMethods {
		if m == method {
			methodOK = true
			break
		}
	}
	return methodOK && matchesPathPattern(path, perm.AllowedPaths)
}

// matchesPathPattern reports whether path matches any pattern. A pattern
// like "/posts/*" matches "/posts" itself plus any subpath ("/posts/1",
// "/posts/1/preview").
func matchesPathPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}
