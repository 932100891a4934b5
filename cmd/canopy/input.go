package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"

	"github.com/canopyml/canopy"
	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/dataset/csv"
	"github.com/canopyml/canopy/dataset/mongodataset"
	"github.com/canopyml/canopy/dataset/sqldataset"
	"github.com/canopyml/canopy/dataset/sqldataset/pgadapter"
	"github.com/canopyml/canopy/dataset/sqldataset/sqlite3adapter"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/model"
	"github.com/canopyml/canopy/model/redisstore"
)

/*
readData loads a dataset from the location named by input: a
PostgreSQL connection URL, a MongoDB connection URL, an SQLite3 (.db)
file, a CSV file, or STDIN when empty. Database locations require a
feature definition; for CSV a nil definition makes the features be
taken from the annotated header instead.
*/
func readData(ctx context.Context, log logger, input string, definition feature.Definition) (*dataset.Dataset, error) {
	switch {
	case strings.HasPrefix(input, "postgresql://"):
		if definition == nil {
			return nil, fmt.Errorf("reading from %s requires the metadata flag", input)
		}
		log.Logf("Creating PostgreSQL adapter for url %s to read dataset...", input)
		adapter, err := pgadapter.New(input)
		if err != nil {
			return nil, err
		}
		db, err := sqldataset.Open(ctx, adapter, definition)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Read(ctx)
	case strings.HasPrefix(input, "mongodb://"):
		if definition == nil {
			return nil, fmt.Errorf("reading from %s requires the metadata flag", input)
		}
		log.Logf("Connecting to MongoDB at %s to read dataset...", input)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		mds, err := mongodataset.Open(ctx, session, definition)
		if err != nil {
			return nil, err
		}
		return mds.Read(ctx)
	case strings.HasSuffix(input, ".db"):
		if definition == nil {
			return nil, fmt.Errorf("reading from %s requires the metadata flag", input)
		}
		log.Logf("Creating SQLite3 adapter for file %s to read dataset...", input)
		adapter, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, err
		}
		db, err := sqldataset.Open(ctx, adapter, definition)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Read(ctx)
	}
	if input == "" {
		log.Logf("Reading dataset from STDIN...")
	} else {
		log.Logf("Opening %s to read dataset...", input)
	}
	if definition == nil {
		return csv.ReadDatasetFromFilePath(input)
	}
	return csv.ReadInstancesFromFilePath(input, definition)
}

/*
writeData dumps a dataset on the location named by output, accepting
the same kinds of locations readData reads from, with STDOUT as the
empty default.
*/
func writeData(ctx context.Context, log logger, output string, d *dataset.Dataset) error {
	switch {
	case strings.HasPrefix(output, "postgresql://"):
		log.Logf("Creating PostgreSQL adapter for url %s to dump dataset...", output)
		adapter, err := pgadapter.New(output)
		if err != nil {
			return err
		}
		db, err := sqldataset.Create(ctx, adapter, d.Definition)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.WriteDataset(ctx, d)
		return err
	case strings.HasPrefix(output, "mongodb://"):
		log.Logf("Connecting to MongoDB at %s to dump dataset...", output)
		session, err := mgo.Dial(output)
		if err != nil {
			return err
		}
		defer session.Close()
		mds, err := mongodataset.Open(ctx, session, d.Definition)
		if err != nil {
			return err
		}
		_, err = mds.WriteDataset(ctx, d)
		return err
	case strings.HasSuffix(output, ".db"):
		log.Logf("Creating SQLite3 adapter for file %s to dump dataset...", output)
		adapter, err := sqlite3adapter.New(output)
		if err != nil {
			return err
		}
		db, err := sqldataset.Create(ctx, adapter, d.Definition)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.WriteDataset(ctx, d)
		return err
	}
	var f *os.File
	if output == "" {
		log.Logf("Using STDOUT to dump dataset...")
		f = os.Stdout
	} else {
		log.Logf("Creating %s to dump dataset...", output)
		var err error
		f, err = os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	return csv.Write(f, d)
}

/*
saveForest stores a trained forest and its feature definition on the
location named by output: a redis connection URL under the given model
name, a file path, or STDOUT when empty.
*/
func saveForest(ctx context.Context, log logger, output, name string, f *canopy.Forest, definition feature.Definition) error {
	if strings.HasPrefix(output, "redis://") {
		log.Logf("Connecting to redis at %s to store model %s...", output, name)
		store, err := redisStore(output)
		if err != nil {
			return err
		}
		return store.Save(ctx, name, f, definition)
	}
	if output == "" {
		return model.Write(os.Stdout, f, definition)
	}
	log.Logf("Writing model to %s...", output)
	return model.WriteFile(output, f, definition)
}

/*
loadForest reads a forest and its feature definition back from a
redis connection URL or a file path.
*/
func loadForest(ctx context.Context, log logger, input, name string) (*canopy.Forest, feature.Definition, error) {
	if strings.HasPrefix(input, "redis://") {
		log.Logf("Connecting to redis at %s to load model %s...", input, name)
		store, err := redisStore(input)
		if err != nil {
			return nil, nil, err
		}
		return store.Load(ctx, name)
	}
	log.Logf("Reading model from %s...", input)
	return model.ReadFile(input)
}

func redisStore(url string) (*redisstore.Store, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %v", err)
	}
	return redisstore.New(redis.NewClient(options), "canopy"), nil
}

func targetIndex(definition feature.Definition, name string) (int, error) {
	index, err := definition.IndexOf(name)
	if err != nil {
		return 0, fmt.Errorf("target feature '%s' is not defined", name)
	}
	return index, nil
}
