package chunkstore

import "fmt"

// Key prefixes. Document ids may contain any byte except NUL, which
// terminates the id inside composite keys.
const (
	docPrefix       = "doc:"
	chunkPrefix     = "chk:"
	rejectionPrefix = "rej:"
	hashPrefix      = "hash:"
)

func docKey(docID string) []byte {
	return []byte(docPrefix + docID)
}

// chunkKey orders chunks by sequence within a document.
func chunkKey(docID string, seq int) []byte {
	return fmt.Appendf(nil, "%s%s\x00%08d", chunkPrefix, docID, seq)
}

func chunkDocPrefix(docID string) []byte {
	return []byte(chunkPrefix + docID + "\x00")
}

func rejectionKey(docID string, n int) []byte {
	return fmt.Appendf(nil, "%s%s\x00%08d", rejectionPrefix, docID, n)
}

func rejectionDocPrefix(docID string) []byte {
	return []byte(rejectionPrefix + docID + "\x00")
}

func hashKey(hash string) []byte {
	return []byte(hashPrefix + hash)
}
