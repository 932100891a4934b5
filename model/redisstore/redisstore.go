/*
Package redisstore keeps serialized forest models in a redis DB under
named keys, so trained models can be shared between the process that
grows them and the processes that apply them.
*/
package redisstore

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/redis.v5"

	canopy "github.com/canopyml/canopy"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/model"
)

/*
Store saves and loads models on a redis DB. Every model is kept as a
single value under a key built from the store's prefix and the
model's name.
*/
type Store struct {
	rc     *redis.Client
	prefix string
}

/*
New builds a Store backed by the given redis client, keying models
under the given prefix.
*/
func New(rc *redis.Client, prefix string) *Store {
	return &Store{rc: rc, prefix: prefix}
}

/*
Save serializes the forest and its definition and stores them under
the given name, replacing any model already stored under it.
*/
func (s *Store) Save(ctx context.Context, name string, f *canopy.Forest, definition feature.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := model.Marshal(f, definition)
	if err != nil {
		return fmt.Errorf("saving model %q: %v", name, err)
	}
	_, err = s.rc.Set(s.keyFor(name), data, 0).Result()
	if err != nil {
		return fmt.Errorf("saving model %q in redis: %v", name, err)
	}
	return nil
}

/*
Load reconstructs the model stored under the given name. It returns
an error if no model is stored under it.
*/
func (s *Store) Load(ctx context.Context, name string) (*canopy.Forest, feature.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := s.rc.Get(s.keyFor(name)).Result()
	if err == redis.Nil {
		return nil, nil, fmt.Errorf("no model %q in redis", name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving model %q: %v", name, err)
	}
	f, definition, err := model.Unmarshal([]byte(data))
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving model %q: %v", name, err)
	}
	return f, definition, nil
}

/*
Delete removes the model stored under the given name, if any.
*/
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.rc.Del(s.keyFor(name)).Result()
	if err != nil {
		return fmt.Errorf("deleting model %q from redis: %v", name, err)
	}
	return nil
}

/*
List returns the names of the models stored under the store's prefix.
*/
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := s.rc.Keys(s.keyFor("*")).Result()
	if err != nil {
		return nil, fmt.Errorf("listing models in redis: %v", err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, s.prefix+":"))
	}
	return names, nil
}

func (s *Store) keyFor(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}
