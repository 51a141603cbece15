package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubStore struct {
	err     error
	deleted []string
}

func (s *stubStore) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubStore) Delete(_ context.Context, location string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, location)
	return nil
}

func TestProcessCleanup(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		redelivered bool
		storeErr    error
		want        outcome
		wantDeleted int
	}{
		{"删除成功", `{"location":"https://cdn.test/avatars/a.png","reason":"avatar replaced"}`, false, nil, ack, 1},
		{"坏JSON", `{not json`, false, nil, drop, 0},
		{"缺少地址", `{"reason":"x"}`, false, nil, drop, 0},
		{"首次失败重试", `{"location":"k"}`, false, errors.New("timeout"), requeue, 0},
		{"重投后仍失败", `{"location":"k"}`, true, errors.New("timeout"), drop, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{err: tt.storeErr}
			got := processCleanup(context.Background(), []byte(tt.body), tt.redelivered, store)
			assert.Equal(t, tt.want, got)
			assert.Len(t, store.deleted, tt.wantDeleted)
		})
	}
}
