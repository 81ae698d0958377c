package auth

import (
	"fmt"

	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// defaultPolicies lets anyone read and comment, and keeps the settings and
// avatar writes for the admin.
var defaultPolicies = [][]string{
	{Anonymous, "/robots.txt", "GET"},
	{Anonymous, "/sitemap.xml", "GET"},
	{Anonymous, "/api/*", "GET"},
	{Anonymous, "/api/articles/:id/comments", "POST"},

	{Admin, "/api/settings", "PUT"},
	{Admin, "/api/avatars", "POST"},
}

// SeedDefaultPolicies adds the default rules that are missing and makes the
// admin inherit everything anonymous callers may do.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) error {
	for _, p := range defaultPolicies {
		has, err := e.HasPolicy(p)
		if err != nil {
			return fmt.Errorf("failed to look up policy %v: %w", p, err)
		}
		if has {
			continue
		}
		if _, err := e.AddPolicy(p); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	if has, _ := e.HasRoleForUser(Admin, Anonymous); !has {
		if _, err := e.AddRoleForUser(Admin, Anonymous); err != nil {
			return fmt.Errorf("failed to add role %s -> %s: %w", Admin, Anonymous, err)
		}
	}
	log.Debug(fmt.Sprintf("seeded %d authorization policies", len(defaultPolicies)))
	return nil
}
