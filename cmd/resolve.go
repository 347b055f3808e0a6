/*
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
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/resolver"
	"github.com/wardle/pura-go/services"

	_ "github.com/wardle/pura-go/services/chemspider"
	_ "github.com/wardle/pura-go/services/cir"
	_ "github.com/wardle/pura-go/services/pubchem"
)

var outputKind string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <name> [name...]",
	Args:  cobra.MinimumNArgs(1),
	Short: "Resolve one or more compound names to an identifier of the requested kind",
	Long: `Resolve one or more compound names to an identifier of the requested kind,
consulting the configured services and requiring quorum agreement.

For example:

pura-go resolve --output smiles aspirin
pura-go resolve --output inchi-key "ascorbic acid" caffeine --quorum 2
`,
	Run: func(cmd *cobra.Command, args []string) {
		kind, ok := compound.ParseIdentifierTypeName(outputKind)
		if !ok {
			log.Fatalf("pura-go: unrecognised output kind %q", outputKind)
		}

		svcs, err := buildServices()
		if err != nil {
			log.Fatal(err)
		}

		r := resolver.New(resolver.Config{
			Services:   svcs,
			Quorum:     viper.GetInt("quorum"),
			MaxRetries: viper.GetInt("max-retries"),
			BatchSize:  viper.GetInt("batch-size"),
			Silent:     viper.GetBool("silent"),
			Logger:     logger,
		})

		inputs := make([]compound.Identifier, len(args))
		for i, name := range args {
			inputs[i] = compound.New(compound.Name, name)
		}

		out, err := r.Resolve(context.Background(), inputs, compound.NewKindSet(kind))
		if err != nil {
			log.Fatal(err)
		}
		for i, name := range args {
			values := make([]string, len(out[i]))
			for j, id := range out[i] {
				values[j] = id.Value
			}
			fmt.Printf("%s\t%s\n", name, strings.Join(values, ";"))
		}
	},
}

// buildServices constructs the configured service set, in declaration order,
// from the --services flag (default: pubchem, cir).
func buildServices() ([]services.Service, error) {
	names := viper.GetStringSlice("services")
	if len(names) == 0 {
		names = services.DefaultNames
	}
	config := map[string]string{
		"api_key": viper.GetString("chemspider-api-key"),
	}
	out := make([]services.Service, 0, len(names))
	for _, name := range names {
		svc, err := services.New(name, config)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&outputKind, "output", "smiles", "Identifier kind to resolve to (e.g. smiles, inchi, inchi-key, pubchem-cid)")
}
