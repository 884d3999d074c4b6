// Command issue-token mints a bearer token for local testing. Production
// tokens come from the identity service, which signs with the same secret.
package main

import (
	"fmt"
	"os"

	"eagle-bank-api/config"
	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/service"

	flag "github.com/spf13/pflag"
)

func main() {
	userID := flag.StringP("user", "u", "", "user id to put in the sub claim (usr-...)")
	configFile := flag.StringP("config", "c", os.Getenv("EBA_CONFIG_FILE"), "config file")
	flag.Parse()

	if !domain.IsUserID(*userID) {
		fmt.Fprintln(os.Stderr, "--user must look like usr-<alphanumeric>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret is required (EBA_JWT_SECRET)")
		os.Exit(1)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	token, expiry, err := tokenSvc.Generate(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiry.Format("2006-01-02T15:04:05Z07:00"))
}
