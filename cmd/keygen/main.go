// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "go.uber.org/automaxprocs"

	"github.com/carterperez-dev/enhancify/internal/auth"
)

func main() {
	privatePath := flag.String("private", "keys/private.pem", "private key output path")
	publicPath := flag.String("public", "keys/public.pem", "public key output path")
	force := flag.Bool("force", false, "overwrite existing keys")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*privatePath, *publicPath, *force); err != nil {
		logger.Error("key generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ES256 key pair written",
		"private", *privatePath,
		"public", *publicPath,
	)
}

func run(privatePath, publicPath string, force bool) error {
	if !force {
		for _, p := range []string{privatePath, publicPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists, pass -force to replace it", p)
			}
		}
	}

	for _, p := range []string{privatePath, publicPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}

	return auth.GenerateKeyPair(privatePath, publicPath)
}
