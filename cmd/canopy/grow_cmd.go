package main

import (
	"context"
	"fmt"
	"os"

	"github.com/canopyml/canopy"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/feature/yaml"
	"github.com/canopyml/canopy/prng"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput        string
	metadataInput    string
	output           string
	targetFeature    string
	modelName        string
	trees            int
	threads          int
	seed             uint32
	maxDepth         int
	minLeafInstances int
	featuresPerSplit int
	oob              bool
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a random forest from a dataset",
		Long:  `Grow a random forest from a dataset to predict a certain feature.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			log := logger(config.verbose)
			var definition feature.Definition
			if config.metadataInput != "" {
				log.Logf("Reading features from metadata at %s...", config.metadataInput)
				definition, err = yaml.ReadDefinitionFromFile(config.metadataInput)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(2)
				}
			}
			trainingData, err := readData(ctx, log, config.dataInput, definition)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			definition = trainingData.Definition
			target, err := targetIndex(definition, config.targetFeature)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			trainer := config.trainer(target, log)
			log.Logf("Growing %d trees from a dataset with %d instances and %d features to predict %s ...", trainer.Trees, trainingData.Count(), len(definition)-1, config.targetFeature)
			forest, err := trainer.Train(ctx, trainingData)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(5)
			}
			log.Logf("Done")
			log.Logf("%v", forest)
			if config.oob {
				report, err := forest.OOBEvaluate(trainingData)
				if err != nil {
					fmt.Fprintf(os.Stderr, "estimating out-of-bag error: %v\n", err)
					os.Exit(6)
				}
				if forest.ModelKind == feature.Classification {
					fmt.Fprintf(os.Stderr, "out-of-bag error: %f over %d instances (%d skipped)\n", report.ErrorRate(), report.Evaluated, report.Skipped)
				} else {
					fmt.Fprintf(os.Stderr, "out-of-bag mean squared error: %f over %d instances (%d skipped)\n", report.MeanSquaredError, report.Evaluated, report.Skipped)
				}
			}
			err = saveForest(ctx, log, config.output, config.modelName, forest, definition)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use to grow the forest (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required for DB inputs, optional for CSV with an annotated header)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file or a redis connection URL to which the grown forest will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "c", "", "name of the feature the grown forest should predict (required)")
	cmd.PersistentFlags().StringVarP(&(config.modelName), "model-name", "n", "default", "name under which the forest is stored when the output is a redis connection URL")
	cmd.PersistentFlags().IntVarP(&(config.trees), "trees", "t", canopy.DefaultTrees, "number of trees to grow")
	cmd.PersistentFlags().IntVar(&(config.threads), "threads", canopy.DefaultThreads, "number of goroutines growing trees concurrently")
	cmd.PersistentFlags().Uint32Var(&(config.seed), "seed", prng.DefaultSeed, "seed for the random generator, runs with the same seed and parameters grow the same forest")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", canopy.DefaultMaxDepth, "maximum depth of the grown trees, 0 for unlimited")
	cmd.PersistentFlags().IntVar(&(config.minLeafInstances), "min-leaf-instances", canopy.DefaultMinLeafInstances, "minimum number of instances a leaf may hold")
	cmd.PersistentFlags().IntVar(&(config.featuresPerSplit), "features-per-split", 0, "number of features drawn at random at each split, 0 to consider all features")
	cmd.PersistentFlags().BoolVar(&(config.oob), "oob", false, "estimate the out-of-bag error of the grown forest and report it on STDERR")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.targetFeature == "" {
		return fmt.Errorf("required target-feature flag was not set")
	}
	if gcc.trees < 1 {
		return fmt.Errorf("trees flag was set to an invalid value: it must be a positive integer")
	}
	if gcc.threads < 1 {
		return fmt.Errorf("threads flag was set to an invalid value: it must be a positive integer")
	}
	return nil
}

func (gcc *growCmdConfig) trainer(target int, log logger) *canopy.Trainer {
	trainer := canopy.NewTrainer(target)
	trainer.Trees = gcc.trees
	trainer.Threads = gcc.threads
	trainer.Seed = gcc.seed
	trainer.MaxDepth = gcc.maxDepth
	trainer.MinLeafInstances = gcc.minLeafInstances
	trainer.FeaturesPerSplit = gcc.featuresPerSplit
	trainer.ComputeOOB = gcc.oob
	trainer.Log = log
	return trainer
}
