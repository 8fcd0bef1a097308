package chunkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/dgallion1/lexchunk/internal/doctree"
	"github.com/dgallion1/lexchunk/internal/pipeline"
)

var (
	_ pipeline.Sink        = (*Store)(nil)
	_ pipeline.ChunkReader = (*Store)(nil)
)

// StoreDocument writes a document, its chunks, rejections and hash index in
// one transaction, replacing any previous version.
func (s *Store) StoreDocument(_ context.Context, doc pipeline.StoredDocument) error {
	docID := doc.Info.DocID
	return s.withTx(func(tx *badger.Txn) error {
		if err := deleteDocument(tx, docID); err != nil {
			return err
		}
		if err := setJSON(tx, docKey(docID), doc.Info); err != nil {
			return err
		}
		for _, c := range doc.Chunks {
			if err := setJSON(tx, chunkKey(docID, c.Seq), c); err != nil {
				return err
			}
		}
		for i, r := range doc.Rejections {
			if err := setJSON(tx, rejectionKey(docID, i), r); err != nil {
				return err
			}
		}
		if doc.Info.ContentHash != "" {
			if err := tx.Set(hashKey(doc.Info.ContentHash), []byte(docID)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

func (s *Store) FindByHash(_ context.Context, hash string) (string, bool, error) {
	var docID string
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(hashKey(hash))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		docID = string(v)
		return err
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return docID, true, nil
}

func (s *Store) ListDocuments(_ context.Context) ([]pipeline.DocumentInfo, error) {
	var docs []pipeline.DocumentInfo
	err := s.withTx(func(tx *badger.Txn) error {
		return scan(tx, []byte(docPrefix), func(val []byte) error {
			var info pipeline.DocumentInfo
			if err := json.Unmarshal(val, &info); err != nil {
				return err
			}
			docs = append(docs, info)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(docs, func(a, b pipeline.DocumentInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return docs, nil
}

func (s *Store) DeleteDocument(_ context.Context, docID string) error {
	return s.withTx(func(tx *badger.Txn) error {
		return deleteDocument(tx, docID)
	}, true)
}

// Chunks returns the stored chunks of a document in sequence order.
func (s *Store) Chunks(_ context.Context, docID string) ([]doctree.Chunk, error) {
	var chunks []doctree.Chunk
	err := s.withTx(func(tx *badger.Txn) error {
		return scan(tx, chunkDocPrefix(docID), func(val []byte) error {
			var c doctree.Chunk
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			chunks = append(chunks, c)
			return nil
		})
	}, false)
	return chunks, err
}

// Rejections returns the rejection log of a document.
func (s *Store) Rejections(_ context.Context, docID string) ([]doctree.RejectionLogEntry, error) {
	var out []doctree.RejectionLogEntry
	err := s.withTx(func(tx *badger.Txn) error {
		return scan(tx, rejectionDocPrefix(docID), func(val []byte) error {
			var r doctree.RejectionLogEntry
			if err := json.Unmarshal(val, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	}, false)
	return out, err
}

// deleteDocument removes every key belonging to docID. A missing document
// is not an error.
func deleteDocument(tx *badger.Txn, docID string) error {
	item, err := tx.Get(docKey(docID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var info pipeline.DocumentInfo
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &info)
	}); err != nil {
		return fmt.Errorf("decode %s: %w", docID, err)
	}

	var keys [][]byte
	for _, prefix := range [][]byte{chunkDocPrefix(docID), rejectionDocPrefix(docID)} {
		keys = append(keys, keysWithPrefix(tx, prefix)...)
	}
	keys = append(keys, docKey(docID))
	if info.ContentHash != "" {
		keys = append(keys, hashKey(info.ContentHash))
	}
	for _, k := range keys {
		if err := tx.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func keysWithPrefix(tx *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys
}

func scan(tx *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := iter.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func setJSON(tx *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return tx.Set(key, data)
}
