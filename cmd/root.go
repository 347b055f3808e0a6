/*
Package cmd supports the command-line interface for pura-go.

Copyright © 2020 Eldrix Ltd and Mark Wardle (mark@wardle.org)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var Version string

var logger *zap.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pura-go",
	Short: "pura-go resolves chemical compound identifiers across multiple sources",
	Long: `
pura-go resolves chemical compound identifiers (names, SMILES, InChI,
PubChem CIDs and more) by querying several independent chemistry databases
concurrently and cross-checking their answers for agreement.

See https://github.com/wardle/pura-go`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		if viper.GetBool("debug") {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pura-go.yaml)")

	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose, human-readable logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.PersistentFlags().StringSlice("services", nil, "Services to consult, in order (default: pubchem,cir)")
	viper.BindPFlag("services", rootCmd.PersistentFlags().Lookup("services"))

	rootCmd.PersistentFlags().String("chemspider-api-key", "", "API key for the ChemSpider service")
	viper.BindPFlag("chemspider-api-key", rootCmd.PersistentFlags().Lookup("chemspider-api-key"))

	rootCmd.PersistentFlags().Int("quorum", 1, "Number of services that must agree before accepting a result")
	viper.BindPFlag("quorum", rootCmd.PersistentFlags().Lookup("quorum"))

	rootCmd.PersistentFlags().Int("max-retries", 0, "Maximum retry attempts per service (0 = use resolver default)")
	viper.BindPFlag("max-retries", rootCmd.PersistentFlags().Lookup("max-retries"))

	rootCmd.PersistentFlags().Int("batch-size", 0, "Number of identifiers to resolve concurrently (0 = use resolver default)")
	viper.BindPFlag("batch-size", rootCmd.PersistentFlags().Lookup("batch-size"))

	rootCmd.PersistentFlags().Bool("silent", false, "Log failures instead of aborting on the first one")
	viper.BindPFlag("silent", rootCmd.PersistentFlags().Lookup("silent"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".pura-go")
	}

	viper.SetEnvPrefix("PURA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
