package config

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// LoadEnv loads variables from a .env file in the working directory without
// overriding ones already set. A missing file is reported with an error that
// satisfies os.IsNotExist.
func LoadEnv() error {
	return godotenv.Load()
}

func process(ctx context.Context, target any, lookuper envconfig.Lookuper) error {
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: lookuper,
	})
}
