package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelInput string
	modelName  string
	dataInput  string
	output     string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the target feature for a dataset",
		Long:  `Use a forest to predict the target feature of every instance on a dataset, dumping the completed dataset`,
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
			data, err := readData(ctx, log, config.dataInput, definition)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			log.Logf("Predicting %s for %d instances...", definition[forest.TargetIndex].Name, data.Count())
			forest.Log = log
			for _, instance := range data.Instances {
				prediction, err := forest.Evaluate(instance)
				if err != nil {
					fmt.Fprintf(os.Stderr, "predicting: %v\n", err)
					os.Exit(4)
				}
				instance[forest.TargetIndex] = prediction
			}
			log.Logf("Done")
			err = writeData(ctx, log, config.output, data)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "f", "", "path to a file or a redis connection URL from which the forest will be read (required)")
	cmd.PersistentFlags().StringVarP(&(config.modelName), "model-name", "n", "default", "name under which the forest is stored when the model is a redis connection URL")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with instances to predict (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to dump the completed dataset (defaults to STDOUT in CSV)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	return nil
}
