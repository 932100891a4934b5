package main

import (
	"context"
	"fmt"
	"os"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/feature/yaml"
	"github.com/canopyml/canopy/prng"
	"github.com/spf13/cobra"
)

type datasetCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	dataOutput    string
}

func datasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &datasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets",
		Long:  `Manage datasets, moving them between CSV files, SQL databases and MongoDB collections`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			log := logger(config.verbose)
			data, err := config.read(ctx, log)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			log.Logf("Dumping dataset with %d instances...", data.Count())
			err = writeData(ctx, log, config.dataOutput, data)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			log.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the dataset to read (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required for DB inputs, optional for CSV with an annotated header)")
	cmd.PersistentFlags().StringVarP(&(config.dataOutput), "output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to dump the dataset (defaults to STDOUT in CSV)")
	cmd.AddCommand(splitCmd(config))
	return cmd
}

func (dcc *datasetCmdConfig) read(ctx context.Context, log logger) (*dataset.Dataset, error) {
	var definition feature.Definition
	if dcc.metadataInput != "" {
		log.Logf("Reading features from metadata at %s...", dcc.metadataInput)
		var err error
		definition, err = yaml.ReadDefinitionFromFile(dcc.metadataInput)
		if err != nil {
			return nil, err
		}
	}
	return readData(ctx, log, dcc.dataInput, definition)
}

type splitCmdConfig struct {
	splitOutput      string
	splitProbability int
	seed             uint32
}

func splitCmd(datasetConfig *datasetCmdConfig) *cobra.Command {
	config := &splitCmdConfig{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, assigning every instance at random`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			log := logger(datasetConfig.verbose)
			data, err := datasetConfig.read(ctx, log)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			output := dataset.New(data.Definition)
			splitOutput := dataset.New(data.Definition)
			rng := prng.New(config.seed)
			for _, instance := range data.Instances {
				side := output
				if int(rng.Uint32()%100) < config.splitProbability {
					side = splitOutput
				}
				if err := side.Add(instance); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(3)
				}
			}
			err = writeData(ctx, log, datasetConfig.dataOutput, output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			err = writeData(ctx, log, config.splitOutput, splitOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			log.Logf("Dataset with %d instances was split into datasets with %d and %d instances", data.Count(), output.Count(), splitOutput.Count())
		},
	}
	cmd.Flags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that an instance of the dataset will be assigned to the split dataset")
	cmd.Flags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path or connection URL to dump the split dataset (required)")
	cmd.Flags().Uint32Var(&(config.seed), "seed", prng.DefaultSeed, "seed for the random generator deciding every instance's side")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}
