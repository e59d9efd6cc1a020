// Command bootstrap-admin creates the first admin account. Registration over
// HTTP requires an admin token, so the first one is made out of band.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/app"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/logging"
)

const passwordEnv = "BOOTSTRAP_ADMIN_PASSWORD"

var errAdminExists = errors.New("an admin account already exists (use -force to add another)")

func main() {
	email := flag.String("email", "", "email of the admin account to create")
	force := flag.Bool("force", false, "create the account even when an admin already exists")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	password, err := readPassword()
	if err != nil {
		logger.Fatal("read password", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init", zap.Error(err))
	}
	defer c.Close()

	user, err := bootstrap(ctx, c.UserRepo, c.AuthSvc, *email, password, *force)
	if err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}
	logger.Info("admin account created", zap.String("email", user.Email), zap.Uint("user_id", user.ID))
}

func bootstrap(ctx context.Context, users domain.UserRepository, authSvc domain.AuthService, email, password string, force bool) (*domain.User, error) {
	if !force {
		admins, err := users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			return nil, errAdminExists
		}
	}
	return authSvc.Register(ctx, email, password, string(domain.RoleAdmin))
}

// readPassword takes the password from the environment or prompts twice on the terminal
func readPassword() (string, error) {
	if pw, ok := os.LookupEnv(passwordEnv); ok {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passwordEnv)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
