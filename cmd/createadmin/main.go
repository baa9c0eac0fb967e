// Command createadmin adds an admin console account to the configured MongoDB store.
//
//	createadmin -username root -password secret
//
// Values missing from flags are taken from ADMIN_USERNAME/ADMIN_PASSWORD, then read from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/internal/database"
	"github.com/Ayush22-04/xetor-backen/internal/users"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
)

func main() {
	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}

	in := bufio.NewReader(os.Stdin)
	if *username == "" {
		*username = prompt(in, "Username: ")
	}
	if *password == "" {
		*password = prompt(in, "Password: ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	handle := database.NewHandle(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout)
	defer func() { _ = handle.Disconnect(context.Background()) }()
	db, err := handle.Database(ctx)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(ctx, db, database.DefaultIndexes); err != nil {
		logger.Warnf("index bootstrap failed: %v", err)
	}

	svc := users.NewService(users.NewMongoUserRepository(handle.Collection(collections.StorageAdminUsers)), cfg.Auth.BcryptCost)
	if err := run(ctx, svc, *username, *password, os.Stdout); err != nil {
		logger.Fatalf("%v", err)
	}
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func run(ctx context.Context, svc *users.Service, username, password string, out io.Writer) error {
	u, err := svc.Create(ctx, username, password)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			return fmt.Errorf("admin %q already exists", username)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "created admin %q (id %s)\n", u.Username, u.ID.Hex())
	return nil
}
