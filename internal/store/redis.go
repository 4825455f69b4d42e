package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/floeworks/floe/pkg/api"
)

type (
	// RedisWorkflowStore persists workflow definitions as JSON documents
	// under prefixed Redis keys
	RedisWorkflowStore struct {
		client *redis.Client
		prefix string
	}

	// RedisExecutionStore persists execution records, with a per-workflow
	// set indexing its executions for ListByWorkflow
	RedisExecutionStore struct {
		client *redis.Client
		prefix string
	}
)

// NewRedisWorkflowStore creates a workflow store on the given client
func NewRedisWorkflowStore(
	client *redis.Client, prefix string,
) *RedisWorkflowStore {
	return &RedisWorkflowStore{client: client, prefix: prefix}
}

func (s *RedisWorkflowStore) Get(
	ctx context.Context, id string,
) (*api.Workflow, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeWorkflow(data)
}

func (s *RedisWorkflowStore) Put(
	ctx context.Context, w *api.Workflow,
) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(w.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(), w.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisWorkflowStore) List(
	ctx context.Context,
) ([]*api.Workflow, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*api.Workflow, 0, len(ids))
	for _, id := range ids {
		w, err := s.Get(ctx, id)
		if errors.Is(err, ErrWorkflowNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, nil
}

func (s *RedisWorkflowStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return s.client.SRem(ctx, s.indexKey(), id).Err()
}

func (s *RedisWorkflowStore) key(id string) string {
	return s.prefix + ":workflow:" + id
}

func (s *RedisWorkflowStore) indexKey() string {
	return s.prefix + ":workflows"
}

// NewRedisExecutionStore creates an execution store on the given client
func NewRedisExecutionStore(
	client *redis.Client, prefix string,
) *RedisExecutionStore {
	return &RedisExecutionStore{client: client, prefix: prefix}
}

func (s *RedisExecutionStore) Get(
	ctx context.Context, id string,
) (*api.WorkflowExecution, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeExecution(data)
}

func (s *RedisExecutionStore) Put(
	ctx context.Context, e *api.WorkflowExecution,
) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(e.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(e.WorkflowID), e.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisExecutionStore) ListByWorkflow(
	ctx context.Context, workflowID string,
) ([]*api.WorkflowExecution, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(workflowID)).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*api.WorkflowExecution, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if errors.Is(err, ErrExecutionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (s *RedisExecutionStore) Delete(ctx context.Context, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.indexKey(e.WorkflowID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisExecutionStore) key(id string) string {
	return s.prefix + ":execution:" + id
}

func (s *RedisExecutionStore) indexKey(workflowID string) string {
	return s.prefix + ":workflow:" + workflowID + ":executions"
}
