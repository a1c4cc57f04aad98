package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════╗",
		"║   ████████╗ █████╗ ██████╗ ██╗      ██████╗          ║",
		"║   ╚══██╔══╝██╔══██╗██╔══██╗██║     ██╔═══██╗         ║",
		"║      ██║   ███████║██████╔╝██║     ██║   ██║         ║",
		"║      ██║   ██╔══██║██╔══██╗██║     ██║   ██║         ║",
		"║      ██║   ██║  ██║██████╔╝███████╗╚██████╔╝         ║",
		"║      ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚══════╝ ╚═════╝          ║",
		"║                                                      ║",
		"║        Server-driven data tables for SQL             ║",
		"╚══════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                 ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "tablo",
	Short: "Searchable, filterable, exportable data tables over your SQL database",
	Long: `
Tablo serves interactive data tables declared in a YAML file. Every table
supports search, sorting, filters, pagination, column toggling, row and bulk
actions with confirmation, and CSV or Excel export.

Database Support:
- PostgreSQL
- MySQL
- SQLite`,
	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("Tablo CLI version %s\n", Version)
			return
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tablo.config.json)")
	rootCmd.PersistentFlags().String("db", "", "Database URL (overrides config/env)")
	rootCmd.PersistentFlags().String("tables", "", "Table definitions file (overrides config)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("tablo.config")
	}

	viper.AutomaticEnv()

	viper.ReadInConfig()
}
