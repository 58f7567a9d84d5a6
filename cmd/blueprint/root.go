// Package blueprint wires the CLI commands: lint, services, env, export,
// and keepalive.
package blueprint

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploykit/blueprint/internal/filesystems"
	"github.com/deploykit/blueprint/pkg/logger"
)

var (
	cfgFile string
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Work with blueprint service manifests",
	Long: `Blueprint parses, validates, and normalizes declarative service
manifests (blueprint.yaml / blueprint.toml / render.yaml):

  lint       Validate manifests and report issues
  services   List the normalized services a source tree declares
  env        Inventory environment variables across manifest, dotenv, Dockerfile
  export     Render the normalized project as json, dotenv, or compose
  keepalive  Run the background job that pings web services to keep them warm`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blueprint.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".blueprint")
	}

	viper.SetDefault("log.level", "info")
	viper.SetDefault("environment", "dev")
	viper.SetEnvPrefix("blueprint")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	log = logger.New(viper.GetString("log.level"), viper.GetString("environment"))
	slog.SetDefault(log)
}

// sourceFromArgs resolves the optional positional source argument into a
// filesystem and base path.
func sourceFromArgs(args []string) (filesystems.FileSystem, string, error) {
	source := "."
	if len(args) > 0 {
		source = args[0]
	}
	return filesystems.NewFileSystem(source)
}
