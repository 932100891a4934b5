package main

import (
	"context"
	"fmt"
	"os"

	"github.com/canopyml/canopy/boost"
	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/feature/yaml"
	"github.com/canopyml/canopy/prng"
	"github.com/spf13/cobra"
)

type boostCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	testInput     string
	metadataInput string
	targetFeature string
	iterations    int
	learningRate  float64
	maxDepth      int
	subsample     float64
	seed          uint32
}

func boostCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &boostCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "boost",
		Short: "Train a boosted ensemble from a dataset",
		Long:  `Train a gradient-boosted ensemble of shallow trees from a dataset to predict a continuous feature.`,
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
			booster := config.booster(target, log)
			log.Logf("Boosting %d iterations over a dataset with %d instances to predict %s ...", booster.Iterations, trainingData.Count(), config.targetFeature)
			boosted, err := booster.Train(ctx, trainingData)
			if err != nil {
				fmt.Fprintf(os.Stderr, "training the boosted ensemble: %v\n", err)
				os.Exit(5)
			}
			log.Logf("Done")
			mse, err := meanSquaredError(boosted, trainingData, target)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			fmt.Printf("%f mean squared error over the %d training instances\n", mse, trainingData.Count())
			if config.testInput != "" {
				testingData, err := readData(ctx, log, config.testInput, definition)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(7)
				}
				mse, err = meanSquaredError(boosted, testingData, target)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(8)
				}
				fmt.Printf("%f mean squared error over the %d testing instances\n", mse, testingData.Count())
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to train on (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.testInput), "test-input", "T", "", "path to a dataset to evaluate the trained ensemble against")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required for DB inputs, optional for CSV with an annotated header)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "c", "", "name of the continuous feature the ensemble should predict (required)")
	cmd.PersistentFlags().IntVar(&(config.iterations), "iterations", boost.DefaultIterations, "number of boosting iterations")
	cmd.PersistentFlags().Float64Var(&(config.learningRate), "learning-rate", boost.DefaultLearningRate, "shrinkage applied to every tree's contribution")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", boost.DefaultMaxDepth, "maximum depth of the boosted trees")
	cmd.PersistentFlags().Float64Var(&(config.subsample), "subsample", boost.DefaultSubsample, "fraction of the training instances drawn at every iteration")
	cmd.PersistentFlags().Uint32Var(&(config.seed), "seed", prng.DefaultSeed, "seed for the random generator, runs with the same seed and parameters train the same ensemble")
	return cmd
}

func (bcc *boostCmdConfig) Validate() error {
	if bcc.targetFeature == "" {
		return fmt.Errorf("required target-feature flag was not set")
	}
	if bcc.iterations < 1 {
		return fmt.Errorf("iterations flag was set to an invalid value: it must be a positive integer")
	}
	return nil
}

func (bcc *boostCmdConfig) booster(target int, log logger) *boost.Booster {
	booster := boost.NewBooster(target)
	booster.Iterations = bcc.iterations
	booster.LearningRate = bcc.learningRate
	booster.MaxDepth = bcc.maxDepth
	booster.Subsample = bcc.subsample
	booster.Seed = bcc.seed
	booster.Log = log
	return booster
}

func meanSquaredError(m *boost.Model, d *dataset.Dataset, target int) (float64, error) {
	if d.Count() == 0 {
		return 0, fmt.Errorf("cannot evaluate the ensemble over an empty dataset")
	}
	var squaredError float64
	for _, instance := range d.Instances {
		prediction, err := m.Evaluate(instance)
		if err != nil {
			return 0, fmt.Errorf("evaluating the ensemble: %v", err)
		}
		diff := float64(prediction.Continuous) - float64(instance[target].Continuous)
		squaredError += diff * diff
	}
	return squaredError / float64(d.Count()), nil
}
