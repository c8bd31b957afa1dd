package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/middleware"
)

// Prints an operator token for the /tenants and /debug endpoints.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	subject := flag.String("user", "", "Operator name for the token")
	roles := flag.String("roles", string(domain.RoleAdmin), "Comma-separated list of roles")
	expirationHours := flag.Int("exp", 0, "Token expiration in hours (defaults to JWT_EXPIRATION_HOURS)")
	flag.Parse()

	if *subject == "" {
		log.Fatal("User is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}
	if *expirationHours > 0 {
		cfg.JWTExpirationHours = *expirationHours
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !domain.IsValidRole(r) {
			fmt.Fprintf(os.Stderr, "unknown role %q, valid roles: %v\n", r, domain.ValidRoles)
			os.Exit(1)
		}
		roleList = append(roleList, r)
	}

	token, err := middleware.NewAuthMiddleware(cfg).GenerateToken(*subject, roleList)
	if err != nil {
		log.Fatalf("Error signing token: %v", err)
	}

	fmt.Printf("Generated JWT Token:\n%s\n", token)
}
