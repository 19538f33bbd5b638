// Command issue-token signs an access token for an operator or a guide.
// Tokens are issued out-of-band; the service has no login flow.
//
// Usage:
//
//	issue-token --subject=ops-alice --role=admin
//	issue-token --subject=<guide id> --role=guide --ttl=720h
//
// Reads AUTH_JWT_SECRET, AUTH_JWT_ISSUER and AUTH_ACCESS_TOKEN_TTL like the
// server does.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/auth"
	"github.com/heartmarshall/tourops-backend/internal/config"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

func main() {
	subject := flag.String("subject", "", "token subject: operator name, or guide id for guide tokens")
	role := flag.String("role", "admin", "token role: admin or guide")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to auth.access_token_ttl)")
	flag.Parse()

	if strings.TrimSpace(*subject) == "" {
		fmt.Fprintln(os.Stderr, "Usage: issue-token --subject=ops-alice [--role=admin|guide] [--ttl=12h]")
		os.Exit(1)
	}

	r := domain.UserRole(strings.ToLower(*role))
	if !r.IsValid() {
		log.Fatalf("unknown role %q", *role)
	}
	if r == domain.UserRoleGuide {
		if _, err := uuid.Parse(*subject); err != nil {
			log.Fatalf("guide tokens need the guide id as subject: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lifetime := cfg.Auth.AccessTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, lifetime).
		GenerateAccessToken(*subject, r)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Token for %q (%s) valid until %s\n", *subject, r, time.Now().Add(lifetime).UTC().Format(time.RFC3339))
	fmt.Println(token)
}
