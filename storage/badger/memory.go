// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/storage"
)

// MemoryStore implements storage.MemoryStore for BadgerDB.
// Each session's message list is stored wholesale under one key, which
// makes ReplaceMessages and DeleteMessages single-key operations.
type MemoryStore struct {
	backend *Backend
}

var _ storage.MemoryStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(backend *Backend) *MemoryStore {
	return &MemoryStore{backend: backend}
}

// Messages returns the stored message list for the session.
// An unknown session yields an empty list.
func (s *MemoryStore) Messages(ctx context.Context, sessionId string) ([]core.Message, error) {
	var messages []core.Message
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(sessionId))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			messages, err = storage.UnmarshalMessages(val)
			return err
		})
	}, false)
	return messages, err
}

// ReplaceMessages replaces the session's message list wholesale.
func (s *MemoryStore) ReplaceMessages(ctx context.Context, sessionId string, messages []core.Message) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		value := storage.MarshalMessages(messages)
		if err := tx.Set(makeSessionKey(sessionId), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteMessages removes all messages for the session.
// Deleting an unknown session is a no-op.
func (s *MemoryStore) DeleteMessages(ctx context.Context, sessionId string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(sessionId)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the backend owns the database handle.
func (s *MemoryStore) Close() error {
	return nil
}
