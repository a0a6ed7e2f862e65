package main

import (
	"github.com/spf13/cobra"

	"github.com/DoyleJ11/cardlobby-backend/internal/config"
)

const releaseVersion = "0.1.0"

func main() {
	cobra.CheckErr(config.LoadDotEnv(".env"))
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
