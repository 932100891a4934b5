package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	modelInput string
	modelName  string
	dataInput  string
	importance bool
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a forest",
		Long:  `Test the performance of a forest against a test dataset`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			log := logger(config.verbose)
			forest, definition, err := loadForest(ctx, log, config.modelInput, config.modelName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			testingData, err := readData(ctx, log, config.dataInput, definition)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			log.Logf("Testing forest against a dataset with %d instances...", testingData.Count())
			forest.Log = log
			results, err := forest.Test(testingData)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing forest: %v\n", err)
				os.Exit(4)
			}
			log.Logf("Done")
			fmt.Println(results)
			if config.importance {
				fmt.Println("feature importances:")
				for _, imp := range forest.Importances(definition) {
					fmt.Printf("  %s: %.2f (used on %d splits)\n", imp.Name, imp.Score, imp.Count)
				}
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "f", "", "path to a file or a redis connection URL from which the forest to test will be read (required)")
	cmd.PersistentFlags().StringVarP(&(config.modelName), "model-name", "n", "default", "name under which the forest is stored when the model is a redis connection URL")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to test the forest against (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().BoolVar(&(config.importance), "importance", false, "report the relative importance of every feature of the forest")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	return nil
}
